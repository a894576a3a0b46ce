package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"table-reservation-backend/internal/model"
)

// GormPersister keeps the snapshot as one row of the snapshots table.
type GormPersister struct {
	db   *gorm.DB
	name string
}

// NewGormPersister creates a persister for the snapshot row called name.
func NewGormPersister(db *gorm.DB, name string) *GormPersister {
	return &GormPersister{db: db, name: name}
}

// Load reads the snapshot row, returning an empty record when it does not exist yet.
func (p *GormPersister) Load(ctx context.Context) (model.Record, error) {
	var row model.Snapshot
	err := p.db.WithContext(ctx).Where("name = ?", p.name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Record{}, nil
	}
	if err != nil {
		return model.Record{}, fmt.Errorf("failed to read snapshot %q: %w", p.name, err)
	}
	if row.Version > model.SnapshotSchemaVersion {
		return model.Record{}, fmt.Errorf("snapshot %q has schema version %d, newer than supported %d", p.name, row.Version, model.SnapshotSchemaVersion)
	}
	return model.Record{Payload: row.Payload, LastID: row.LastID}, nil
}

// Save upserts the snapshot row. Every save gets a fresh revision tag so
// operators can tell writes apart in the table.
func (p *GormPersister) Save(ctx context.Context, rec model.Record) error {
	row := model.Snapshot{
		Name:      p.name,
		Version:   model.SnapshotSchemaVersion,
		Revision:  uuid.NewString(),
		Payload:   rec.Payload,
		LastID:    rec.LastID,
		UpdatedAt: time.Now().UTC(),
	}
	err := p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"version", "revision", "payload", "last_id", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to write snapshot %q: %w", p.name, err)
	}
	return nil
}
