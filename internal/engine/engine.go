// Package engine mutates the reservation store only through validated
// transitions and owns the create/edit state machine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"table-reservation-backend/internal/clock"
	"table-reservation-backend/internal/model"
	"table-reservation-backend/internal/store"
	"table-reservation-backend/internal/validation"
)

// Notifier receives every committed change. Implementations must not block.
type Notifier interface {
	Notify(change model.Change)
}

// Engine is synchronous and not safe for concurrent use; callers serialise access.
type Engine struct {
	store     *store.Store
	validator *validation.Validator
	clock     clock.Clock
	log       *slog.Logger
	notifier  Notifier
	lastID    int64
}

// New creates an engine over s. The id sequence continues after the highest
// id the store has ever held, so ids of deleted reservations are not issued again.
func New(s *store.Store, v *validation.Validator, c clock.Clock, log *slog.Logger) *Engine {
	return &Engine{
		store:     s,
		validator: v,
		clock:     c,
		log:       log,
		lastID:    s.LastID(),
	}
}

// SetNotifier registers the receiver of committed changes.
func (e *Engine) SetNotifier(n Notifier) {
	e.notifier = n
}

func (e *Engine) nextID() int64 {
	e.lastID++
	return e.lastID
}

// Submit validates d and applies it according to st. In Creating a new
// reservation is added; in Editing(id) that reservation is replaced in place.
// On success the returned state is Creating. On any error st is returned
// unchanged and the store is untouched.
func (e *Engine) Submit(ctx context.Context, st State, d model.Draft) (model.Reservation, State, error) {
	d = e.validator.Normalize(d)

	if id, editing := st.Target(); editing {
		r, err := e.update(ctx, id, d)
		if err != nil {
			return model.Reservation{}, st, err
		}
		return r, Creating(), nil
	}

	r, err := e.create(ctx, d)
	if err != nil {
		return model.Reservation{}, st, err
	}
	return r, Creating(), nil
}

func (e *Engine) create(ctx context.Context, d model.Draft) (model.Reservation, error) {
	if err := e.validator.ValidateReservation(d, e.store.Snapshot(), 0); err != nil {
		return model.Reservation{}, err
	}

	now := e.clock.Now()
	r := model.Reservation{
		ID:         e.nextID(),
		ClientName: d.ClientName,
		Date:       d.Date,
		Time:       d.Time,
		People:     d.People,
		Table:      d.Table,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := e.store.Insert(ctx, r); err != nil {
		if errors.Is(err, store.ErrDuplicateID) {
			panic(fmt.Sprintf("engine: minted id %d already in store", r.ID))
		}
		return model.Reservation{}, err
	}

	e.log.Info("Reservation created", "id", r.ID, "table", r.Table, "date", r.Date, "time", r.Time)
	e.notify(model.ChangeCreated, r)
	return r, nil
}

func (e *Engine) update(ctx context.Context, id int64, d model.Draft) (model.Reservation, error) {
	existing, ok := e.store.Find(id)
	if !ok {
		return model.Reservation{}, validation.NotFound(id)
	}
	if err := e.validator.ValidateReservation(d, e.store.Snapshot(), id); err != nil {
		return model.Reservation{}, err
	}

	r := existing
	r.ClientName = d.ClientName
	r.Date = d.Date
	r.Time = d.Time
	r.People = d.People
	r.Table = d.Table
	r.UpdatedAt = e.clock.Now()
	if err := e.store.Replace(ctx, r); err != nil {
		return model.Reservation{}, err
	}

	e.log.Info("Reservation updated", "id", r.ID, "table", r.Table, "date", r.Date, "time", r.Time)
	e.notify(model.ChangeUpdated, r)
	return r, nil
}

// BeginEdit switches to Editing(id) and returns the record to seed the form.
// An unknown id leaves st unchanged and reports false.
func (e *Engine) BeginEdit(st State, id int64) (model.Reservation, State, bool) {
	r, ok := e.store.Find(id)
	if !ok {
		return model.Reservation{}, st, false
	}
	return r, Editing(id), true
}

// CancelEdit abandons any edit in progress.
func (e *Engine) CancelEdit(State) State {
	return Creating()
}

// Delete removes the reservation with id. It is available in every state
// and reports false when the id is unknown; the error is only ever a
// *store.PersistenceError.
func (e *Engine) Delete(ctx context.Context, id int64) (bool, error) {
	r, ok, err := e.store.Remove(ctx, id)
	if err != nil || !ok {
		return false, err
	}
	e.log.Info("Reservation deleted", "id", id)
	e.notify(model.ChangeDeleted, r)
	return true, nil
}

// Clear removes every reservation and returns how many were removed.
func (e *Engine) Clear(ctx context.Context) (int, error) {
	n, err := e.store.Reset(ctx)
	if err != nil {
		return 0, err
	}
	e.log.Info("All reservations cleared", "count", n)
	e.notify(model.ChangeCleared, model.Reservation{})
	return n, nil
}

// List returns every reservation sorted by date and time.
func (e *Engine) List() []model.Reservation {
	return e.store.List()
}

func (e *Engine) Get(id int64) (model.Reservation, bool) {
	return e.store.Find(id)
}

func (e *Engine) ValidateField(name, raw string) validation.FieldResult {
	return e.validator.ValidateField(name, raw)
}

// Rules exposes the venue bounds for form rendering.
func (e *Engine) Rules() validation.Rules {
	return e.validator.Rules()
}

// Today is the earliest bookable date, at local midnight.
func (e *Engine) Today() time.Time {
	return e.validator.Today()
}

func (e *Engine) notify(kind model.ChangeKind, r model.Reservation) {
	if e.notifier == nil {
		return
	}
	e.notifier.Notify(model.Change{Kind: kind, Reservation: r, At: e.clock.Now()})
}
