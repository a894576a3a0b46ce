package db

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"table-reservation-backend/config"
	"table-reservation-backend/internal/store"
)

// Backend is an opened snapshot persister together with whatever has to be
// closed once the process is done with it.
type Backend struct {
	Persister store.Persister
	// DB is the SQL connection; it is opened for both backends because push
	// subscriptions always live there.
	DB    *gorm.DB
	close []func() error
}

// Close releases every handle opened by OpenBackend.
func (b *Backend) Close() error {
	var first error
	for i := len(b.close) - 1; i >= 0; i-- {
		if err := b.close[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenBackend opens the SQL database and the snapshot store selected by
// cfg.Storage.Backend.
func OpenBackend(cfg *config.Config, log *slog.Logger) (*Backend, error) {
	gormDB, err := Init(&cfg.Database, log)
	if err != nil {
		return nil, err
	}
	b := &Backend{DB: gormDB}
	b.close = append(b.close, func() error {
		sqlDB, err := gormDB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	switch cfg.Storage.Backend {
	case "badger":
		bdb, err := OpenBadger(cfg.Storage.BadgerPath)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.close = append(b.close, bdb.Close)
		b.Persister = store.NewBadgerPersister(bdb, cfg.Storage.SnapshotKey)
	case "gorm", "":
		b.Persister = store.NewGormPersister(gormDB, cfg.Storage.SnapshotKey)
	default:
		b.Close()
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}

	log.Info("Snapshot storage ready", "backend", cfg.Storage.Backend, "key", cfg.Storage.SnapshotKey)
	return b, nil
}
