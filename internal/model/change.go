package model

import "time"

// ChangeKind names a committed mutation of the reservation set.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
	ChangeCleared ChangeKind = "cleared"
)

// Change describes a mutation after it has been persisted.
type Change struct {
	Kind        ChangeKind  `json:"kind"`
	Reservation Reservation `json:"reservation"`
	At          time.Time   `json:"at"`
}
