// Package report derives read-only views from the sorted reservation list.
package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/samber/lo"

	"table-reservation-backend/internal/clock"
	"table-reservation-backend/internal/model"
	"table-reservation-backend/internal/parse"
)

// TableCount is the number of reservations held by one table.
type TableCount struct {
	Table        string `json:"table"`
	Reservations int    `json:"reservations"`
	People       int    `json:"people"`
}

// Stats summarises a reservation list.
type Stats struct {
	TotalReservations int            `json:"totalReservations"`
	TotalPeople       int            `json:"totalPeople"`
	AverageParty      float64        `json:"averageParty"`
	MostPopularTable  string         `json:"mostPopularTable,omitempty"`
	ByTable           []TableCount   `json:"byTable"`
	ByWeekday         map[string]int `json:"byWeekday"`
	Upcoming          int            `json:"upcoming"`
}

// Compute builds the statistics for list. Reservations dated today or later
// count as upcoming. Ties for the most popular table go to the table that
// was booked first in list order.
func Compute(list []model.Reservation, today time.Time) Stats {
	s := Stats{
		TotalReservations: len(list),
		TotalPeople:       lo.SumBy(list, func(r model.Reservation) int { return r.People }),
		ByTable:           []TableCount{},
		ByWeekday:         map[string]int{},
	}
	if len(list) == 0 {
		return s
	}
	s.AverageParty = float64(s.TotalPeople) / float64(len(list))

	groups := lo.GroupBy(list, func(r model.Reservation) string { return r.Table })
	order := lo.Uniq(lo.Map(list, func(r model.Reservation, _ int) string { return r.Table }))
	s.ByTable = lo.Map(order, func(table string, _ int) TableCount {
		rs := groups[table]
		return TableCount{
			Table:        table,
			Reservations: len(rs),
			People:       lo.SumBy(rs, func(r model.Reservation) int { return r.People }),
		}
	})
	// On a tie the table whose first booking came later wins.
	best := lo.MaxBy(s.ByTable, func(a, b TableCount) bool { return a.Reservations >= b.Reservations })
	s.MostPopularTable = best.Table

	// Busiest tables first, ties in booking order.
	slices.SortStableFunc(s.ByTable, func(a, b TableCount) int {
		return cmp.Compare(b.Reservations, a.Reservations)
	})

	for _, r := range list {
		d, err := parse.Date(r.Date, today.Location())
		if err != nil {
			continue
		}
		s.ByWeekday[d.Weekday().String()]++
		if !clock.BeforeDay(d, today) {
			s.Upcoming++
		}
	}
	return s
}
