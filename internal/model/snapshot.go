package model

import "time"

// SnapshotSchemaVersion tags the layout of Snapshot.Payload.
const SnapshotSchemaVersion = 1

// Record is the persisted form of the reservation set: the encoded
// reservation array and the highest id ever issued, which outlives the
// reservation that carried it.
type Record struct {
	Payload []byte
	LastID  int64
}

// Snapshot is the single keyed blob holding the whole reservation set.
type Snapshot struct {
	Name      string    `gorm:"primaryKey;size:128"`
	Version   int       `gorm:"not null"`
	Revision  string    `gorm:"size:36;not null"`
	Payload   []byte    `gorm:"not null"`
	LastID    int64     `gorm:"column:last_id;not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}
