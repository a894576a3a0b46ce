// Package validation decides whether a reservation draft is acceptable and
// explains why not. It never touches storage; the conflict check works on
// the reservation slice handed in by the caller.
package validation

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"table-reservation-backend/internal/clock"
	"table-reservation-backend/internal/model"
	"table-reservation-backend/internal/parse"
)

// Field names accepted by ValidateField. They match the JSON names of model.Draft.
const (
	FieldClientName = "clientName"
	FieldDate       = "date"
	FieldTime       = "time"
	FieldPeople     = "people"
	FieldTable      = "table"
)

const minNameLength = 2

// Rules are the venue bounds. CloseHour is inclusive.
type Rules struct {
	OpenHour  int
	CloseHour int
	Tables    []string
}

// FieldResult is the outcome of a single-field check.
type FieldResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

type Validator struct {
	rules Rules
	clock clock.Clock
	loc   *time.Location
}

func New(rules Rules, c clock.Clock) *Validator {
	loc := c.Now().Location()
	return &Validator{rules: rules, clock: c, loc: loc}
}

// Rules returns a copy of the configured bounds.
func (v *Validator) Rules() Rules {
	r := v.rules
	r.Tables = slices.Clone(v.rules.Tables)
	return r
}

// Today returns the first bookable date.
func (v *Validator) Today() time.Time {
	return clock.Today(v.clock)
}

func (v *Validator) knownTable(table string) bool {
	// No configured set means any non-empty identifier is accepted.
	if len(v.rules.Tables) == 0 {
		return true
	}
	return slices.Contains(v.rules.Tables, table)
}

func (v *Validator) withinHours(t parse.TimeOfDay) bool {
	return t.Hour >= v.rules.OpenHour && t.Hour <= v.rules.CloseHour
}

func (v *Validator) hoursMessage() string {
	return fmt.Sprintf("El horario de reservas es de %02d:00 a %02d:00", v.rules.OpenHour, v.rules.CloseHour)
}

// Normalize trims the draft and rewrites a parseable time as HH:MM so that
// conflict detection compares canonical values.
func (v *Validator) Normalize(d model.Draft) model.Draft {
	d.ClientName = parse.Name(d.ClientName)
	d.Date = strings.TrimSpace(d.Date)
	d.Table = strings.TrimSpace(d.Table)
	d.Time = strings.TrimSpace(d.Time)
	if t, err := parse.Time(d.Time); err == nil {
		d.Time = t.String()
	}
	return d
}

// ValidateField checks one raw form value for live feedback.
func (v *Validator) ValidateField(name, raw string) FieldResult {
	value := strings.TrimSpace(raw)

	switch name {
	case FieldClientName:
		if utf8.RuneCountInString(parse.Name(value)) < minNameLength {
			return FieldResult{Message: "El nombre debe tener al menos 2 caracteres"}
		}
	case FieldDate:
		if value == "" {
			return FieldResult{Message: "La fecha es obligatoria"}
		}
		d, err := parse.Date(value, v.loc)
		if err != nil {
			return FieldResult{Message: "La fecha no tiene un formato válido"}
		}
		if clock.BeforeDay(d, v.Today()) {
			return FieldResult{Message: "No se pueden seleccionar fechas pasadas"}
		}
	case FieldTime:
		if value == "" {
			return FieldResult{Message: "La hora es obligatoria"}
		}
		t, err := parse.Time(value)
		if err != nil {
			return FieldResult{Message: "La hora no tiene un formato válido"}
		}
		if !v.withinHours(t) {
			return FieldResult{Message: fmt.Sprintf("Horario: %02d:00 - %02d:00", v.rules.OpenHour, v.rules.CloseHour)}
		}
	case FieldPeople:
		n, err := parse.People(value)
		if err != nil || n <= 0 {
			return FieldResult{Message: "Debe ser mayor que 0"}
		}
	case FieldTable:
		if value == "" {
			return FieldResult{Message: "Debe seleccionar una mesa"}
		}
		if !v.knownTable(value) {
			return FieldResult{Message: "La mesa seleccionada no existe"}
		}
	default:
		return FieldResult{Message: fmt.Sprintf("Campo desconocido: %s", name)}
	}
	return FieldResult{Valid: true}
}

// ValidateReservation runs the full-record checks before a create or update.
// The first failing check wins, in this order: name, date present, time
// present, people, table, date not past, time within hours, conflict.
// excludeID is the id of the record being edited, or 0 when creating.
func (v *Validator) ValidateReservation(d model.Draft, existing []model.Reservation, excludeID int64) error {
	name := parse.Name(d.ClientName)
	if name == "" {
		return missing(FieldClientName, "El nombre del cliente es obligatorio y debe tener al menos 2 caracteres")
	}
	if utf8.RuneCountInString(name) < minNameLength {
		return invalidLength(FieldClientName, "El nombre del cliente es obligatorio y debe tener al menos 2 caracteres")
	}
	if strings.TrimSpace(d.Date) == "" {
		return missing(FieldDate, "La fecha es obligatoria")
	}
	if strings.TrimSpace(d.Time) == "" {
		return missing(FieldTime, "La hora es obligatoria")
	}
	if d.People <= 0 {
		return &ValidationError{Kind: KindNonPositiveCount, Field: FieldPeople, Message: "El número de personas debe ser mayor que 0"}
	}
	table := strings.TrimSpace(d.Table)
	if table == "" {
		return missing(FieldTable, "La selección de mesa es obligatoria")
	}
	if !v.knownTable(table) {
		return &ValidationError{Kind: KindUnknownTable, Field: FieldTable, Message: "La mesa seleccionada no existe"}
	}

	date, err := parse.Date(d.Date, v.loc)
	if err != nil {
		return invalidFormat(FieldDate, "La fecha no tiene un formato válido")
	}
	if clock.BeforeDay(date, v.Today()) {
		return &ValidationError{Kind: KindPastDate, Field: FieldDate, Message: "La fecha ingresada ya pasó"}
	}

	t, err := parse.Time(d.Time)
	if err != nil {
		return invalidFormat(FieldTime, "La hora no tiene un formato válido")
	}
	if !v.withinHours(t) {
		return &ValidationError{Kind: KindOutOfHours, Field: FieldTime, Message: v.hoursMessage()}
	}

	candidate := model.Reservation{Table: table, Date: date.Format(clock.DateLayout), Time: t.String()}
	for _, r := range existing {
		if r.ID != excludeID && r.Slot(candidate) {
			return &ValidationError{Kind: KindConflict, Message: "Esa mesa ya está ocupada en ese horario"}
		}
	}
	return nil
}
