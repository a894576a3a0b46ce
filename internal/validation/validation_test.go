package validation

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"table-reservation-backend/internal/clock"
	"table-reservation-backend/internal/model"
)

var now = time.Date(2026, 10, 16, 18, 30, 0, 0, time.UTC)

const (
	today     = "2026-10-16"
	yesterday = "2026-10-15"
	tomorrow  = "2026-10-17"
)

func newValidator() *Validator {
	return New(Rules{OpenHour: 7, CloseHour: 22, Tables: []string{"T1", "T2", "T3"}}, clock.Fixed(now))
}

func validDraft() model.Draft {
	return model.Draft{ClientName: "Ana", Date: today, Time: "12:00", People: 2, Table: "T1"}
}

func TestValidateReservation_Order(t *testing.T) {
	v := newValidator()
	existing := []model.Reservation{
		{ID: 1, ClientName: "Luis", Date: today, Time: "12:00", People: 4, Table: "T1"},
	}

	testCases := []struct {
		name      string
		mutate    func(d *model.Draft)
		excludeID int64
		kind      Kind
		field     string
	}{
		{name: "valid", mutate: func(d *model.Draft) { d.Table = "T2" }},
		{name: "missing name", mutate: func(d *model.Draft) { d.ClientName = "   " }, kind: KindMissingField, field: FieldClientName},
		{name: "short name", mutate: func(d *model.Draft) { d.ClientName = " A " }, kind: KindInvalidLength, field: FieldClientName},
		{name: "missing date", mutate: func(d *model.Draft) { d.Date = "" }, kind: KindMissingField, field: FieldDate},
		{name: "missing time", mutate: func(d *model.Draft) { d.Time = "" }, kind: KindMissingField, field: FieldTime},
		{name: "zero people", mutate: func(d *model.Draft) { d.People = 0 }, kind: KindNonPositiveCount, field: FieldPeople},
		{name: "negative people", mutate: func(d *model.Draft) { d.People = -1 }, kind: KindNonPositiveCount, field: FieldPeople},
		{name: "missing table", mutate: func(d *model.Draft) { d.Table = "" }, kind: KindMissingField, field: FieldTable},
		{name: "unknown table", mutate: func(d *model.Draft) { d.Table = "T99" }, kind: KindUnknownTable, field: FieldTable},
		{name: "malformed date", mutate: func(d *model.Draft) { d.Date = "16/10/2026" }, kind: KindInvalidFormat, field: FieldDate},
		{name: "past date", mutate: func(d *model.Draft) { d.Date = yesterday }, kind: KindPastDate, field: FieldDate},
		{name: "malformed time", mutate: func(d *model.Draft) { d.Time = "noon" }, kind: KindInvalidFormat, field: FieldTime},
		{name: "before opening", mutate: func(d *model.Draft) { d.Time = "06:59" }, kind: KindOutOfHours, field: FieldTime},
		{name: "after closing", mutate: func(d *model.Draft) { d.Time = "23:00" }, kind: KindOutOfHours, field: FieldTime},
		{name: "closing hour is inclusive", mutate: func(d *model.Draft) { d.Time = "22:30"; d.Table = "T2" }},
		{name: "conflict", mutate: func(d *model.Draft) {}, kind: KindConflict},
		{name: "conflict with unpadded time", mutate: func(d *model.Draft) { d.Time = "12:00:00" }, kind: KindConflict},
		{name: "self excluded", mutate: func(d *model.Draft) {}, excludeID: 1},
		{name: "other day is free", mutate: func(d *model.Draft) { d.Date = tomorrow }},
		// Several failures at once: the earliest check wins.
		{name: "past date and out of hours", mutate: func(d *model.Draft) { d.Date = yesterday; d.Time = "23:00" }, kind: KindPastDate, field: FieldDate},
		{name: "short name and no people", mutate: func(d *model.Draft) { d.ClientName = "A"; d.People = 0 }, kind: KindInvalidLength, field: FieldClientName},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := validDraft()
			tc.mutate(&d)

			err := v.ValidateReservation(d, existing, tc.excludeID)
			if tc.kind == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.kind, ve.Kind)
			assert.Equal(t, tc.field, ve.Field)
			assert.NotEmpty(t, ve.Message)
		})
	}
}

func TestValidateReservation_AnyTableWhenNoneConfigured(t *testing.T) {
	v := New(Rules{OpenHour: 8, CloseHour: 22}, clock.Fixed(now))

	d := validDraft()
	d.Table = "Barra"
	assert.NoError(t, v.ValidateReservation(d, nil, 0))

	d.Time = "07:30"
	assert.Equal(t, KindOutOfHours, KindOf(v.ValidateReservation(d, nil, 0)))
}

func TestValidateField(t *testing.T) {
	v := newValidator()

	testCases := []struct {
		field string
		raw   string
		valid bool
	}{
		{FieldClientName, "Ana", true},
		{FieldClientName, " A ", false},
		{FieldClientName, "", false},
		{FieldDate, today, true},
		{FieldDate, tomorrow, true},
		{FieldDate, yesterday, false},
		{FieldDate, "", false},
		{FieldDate, "mañana", false},
		{FieldTime, "07:00", true},
		{FieldTime, "22:59", true},
		{FieldTime, "06:30", false},
		{FieldTime, "23:00", false},
		{FieldTime, "", false},
		{FieldPeople, "1", true},
		{FieldPeople, "0", false},
		{FieldPeople, "", false},
		{FieldPeople, "dos", false},
		{FieldTable, "T3", true},
		{FieldTable, "", false},
		{FieldTable, "T9", false},
		{"notes", "anything", false},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s=%q", tc.field, tc.raw), func(t *testing.T) {
			res := v.ValidateField(tc.field, tc.raw)
			assert.Equal(t, tc.valid, res.Valid)
			if !tc.valid {
				assert.NotEmpty(t, res.Message)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	v := newValidator()
	d := v.Normalize(model.Draft{ClientName: "  Ana   Pérez ", Date: " 2026-10-20 ", Time: "9:05", People: 3, Table: " T2 "})

	assert.Equal(t, model.Draft{ClientName: "Ana Pérez", Date: "2026-10-20", Time: "09:05", People: 3, Table: "T2"}, d)
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("submit: %w", &ValidationError{Kind: KindConflict})
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
	assert.Equal(t, KindNotFound, KindOf(NotFound(7)))
}
