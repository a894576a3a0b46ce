//go:generate go run go.uber.org/mock/mockgen -source=persister.go -destination=../mocks/mock_persister.go -package=mocks
package store

import (
	"context"
	"errors"
	"fmt"

	"table-reservation-backend/internal/model"
)

var (
	ErrDuplicateID = errors.New("duplicate reservation id")
	ErrNotFound    = errors.New("reservation not found")
)

// Persister stores the full reservation snapshot under a single key.
type Persister interface {
	// Load returns the stored record. Payload is nil when nothing was ever saved.
	Load(ctx context.Context) (model.Record, error)
	// Save replaces the stored record.
	Save(ctx context.Context, rec model.Record) error
}

// PersistenceError reports that the snapshot could not be read or written.
// A mutation that fails with it has not been applied.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s reservation snapshot: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
