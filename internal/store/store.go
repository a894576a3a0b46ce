package store

import (
	"cmp"
	"context"
	"encoding/json"
	"log/slog"
	"slices"

	"table-reservation-backend/internal/model"
)

// Store holds the live reservation set in insertion order and writes the
// whole set through its Persister after every mutation.
// It is not safe for concurrent use.
type Store struct {
	persister Persister
	log       *slog.Logger
	items     []model.Reservation
	lastID    int64
	recovered bool
}

// Open loads the persisted snapshot once. An absent or undecodable payload
// yields an empty store; only a failing Persister is an error.
func Open(ctx context.Context, p Persister, log *slog.Logger) (*Store, error) {
	rec, err := p.Load(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}

	s := &Store{persister: p, log: log, lastID: rec.LastID}
	items, err := decode(rec.Payload)
	if err != nil {
		log.Warn("Stored reservation snapshot is corrupt, starting empty", "error", err, "bytes", len(rec.Payload))
		s.recovered = true
		return s, nil
	}
	s.items = dedupe(items, log)
	s.lastID = max(s.lastID, s.MaxID())
	log.Info("Reservation snapshot loaded", "count", len(s.items), "last_id", s.lastID)
	return s, nil
}

// Recovered reports whether Open discarded a corrupt payload.
func (s *Store) Recovered() bool {
	return s.recovered
}

func (s *Store) Len() int {
	return len(s.items)
}

func (s *Store) Find(id int64) (model.Reservation, bool) {
	i := s.index(id)
	if i < 0 {
		return model.Reservation{}, false
	}
	return s.items[i], true
}

// Snapshot returns a copy of the set in insertion order.
func (s *Store) Snapshot() []model.Reservation {
	return slices.Clone(s.items)
}

// List returns a copy sorted by date then time. Reservations at the same
// date and time keep their insertion order.
func (s *Store) List() []model.Reservation {
	out := slices.Clone(s.items)
	slices.SortStableFunc(out, func(a, b model.Reservation) int {
		if c := cmp.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.Time, b.Time)
	})
	return out
}

// MaxID returns the largest id in the set, or 0 when empty.
func (s *Store) MaxID() int64 {
	var maxID int64
	for _, r := range s.items {
		maxID = max(maxID, r.ID)
	}
	return maxID
}

// LastID returns the highest id ever stored, including ids whose
// reservations have since been removed or cleared.
func (s *Store) LastID() int64 {
	return s.lastID
}

// Insert appends r and persists the new snapshot.
func (s *Store) Insert(ctx context.Context, r model.Reservation) error {
	if s.index(r.ID) >= 0 {
		return ErrDuplicateID
	}
	prev, prevLast := s.items, s.lastID
	s.items = append(slices.Clone(s.items), r)
	s.lastID = max(s.lastID, r.ID)
	if err := s.commit(ctx, prev); err != nil {
		s.lastID = prevLast
		return err
	}
	return nil
}

// Replace overwrites the reservation with r.ID in place and persists.
func (s *Store) Replace(ctx context.Context, r model.Reservation) error {
	i := s.index(r.ID)
	if i < 0 {
		return ErrNotFound
	}
	prev := s.items
	s.items = slices.Clone(s.items)
	s.items[i] = r
	return s.commit(ctx, prev)
}

// Remove deletes the reservation with id. It reports false, without
// writing anything, when no such reservation exists.
func (s *Store) Remove(ctx context.Context, id int64) (model.Reservation, bool, error) {
	i := s.index(id)
	if i < 0 {
		return model.Reservation{}, false, nil
	}
	removed := s.items[i]
	prev := s.items
	s.items = slices.Delete(slices.Clone(s.items), i, i+1)
	if err := s.commit(ctx, prev); err != nil {
		return model.Reservation{}, false, err
	}
	return removed, true, nil
}

// Reset removes every reservation and returns how many were dropped.
func (s *Store) Reset(ctx context.Context) (int, error) {
	prev := s.items
	s.items = nil
	if err := s.commit(ctx, prev); err != nil {
		return 0, err
	}
	return len(prev), nil
}

func (s *Store) index(id int64) int {
	return slices.IndexFunc(s.items, func(r model.Reservation) bool { return r.ID == id })
}

// commit saves the current items, restoring prev if the write fails.
func (s *Store) commit(ctx context.Context, prev []model.Reservation) error {
	payload, err := encode(s.items)
	if err == nil {
		err = s.persister.Save(ctx, model.Record{Payload: payload, LastID: s.lastID})
	}
	if err != nil {
		s.items = prev
		s.log.Error("Failed to persist reservation snapshot", "error", err)
		return &PersistenceError{Op: "save", Err: err}
	}
	return nil
}

func encode(items []model.Reservation) ([]byte, error) {
	if items == nil {
		items = []model.Reservation{}
	}
	return json.Marshal(items)
}

func decode(payload []byte) ([]model.Reservation, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	var items []model.Reservation
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, err
	}
	for i := range items {
		// Payloads written before updatedAt existed.
		if items[i].UpdatedAt.IsZero() {
			items[i].UpdatedAt = items[i].CreatedAt
		}
	}
	return items, nil
}

func dedupe(items []model.Reservation, log *slog.Logger) []model.Reservation {
	seen := make(map[int64]struct{}, len(items))
	out := items[:0]
	for _, r := range items {
		if _, ok := seen[r.ID]; ok {
			log.Warn("Dropping reservation with duplicate id from snapshot", "id", r.ID)
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}
