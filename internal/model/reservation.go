package model

import "time"

// Reservation is one booking of a table at a date and time.
// Date and Time keep the wire formats (YYYY-MM-DD and HH:MM) so that
// lexical order matches chronological order.
type Reservation struct {
	ID         int64     `json:"id"`
	ClientName string    `json:"clientName"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	People     int       `json:"people"`
	Table      string    `json:"table"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Draft is an unvalidated candidate reservation coming from the presentation layer.
type Draft struct {
	ClientName string `json:"clientName"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	People     int    `json:"people"`
	Table      string `json:"table"`
}

// Draft returns the editable fields of r, used to seed an edit form.
func (r Reservation) Draft() Draft {
	return Draft{
		ClientName: r.ClientName,
		Date:       r.Date,
		Time:       r.Time,
		People:     r.People,
		Table:      r.Table,
	}
}

// Slot reports whether r occupies the same table, date and time as o.
func (r Reservation) Slot(o Reservation) bool {
	return r.Table == o.Table && r.Date == o.Date && r.Time == o.Time
}
