package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"

	"table-reservation-backend/internal/model"
)

// BadgerPersister keeps the snapshot under a single BadgerDB key, with the
// schema version stored under "<key>:version" and the id high-water mark
// under "<key>:last_id".
type BadgerPersister struct {
	db         *badger.DB
	key        []byte
	versionKey []byte
	lastIDKey  []byte
}

func NewBadgerPersister(db *badger.DB, key string) *BadgerPersister {
	return &BadgerPersister{
		db:         db,
		key:        []byte(key),
		versionKey: []byte(key + ":version"),
		lastIDKey:  []byte(key + ":last_id"),
	}
}

// readInt returns the decimal value stored under key, or 0 when absent.
func readInt(txn *badger.Txn, key []byte) (int64, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q under %s: %w", raw, key, err)
	}
	return n, nil
}

func (p *BadgerPersister) Load(ctx context.Context) (model.Record, error) {
	if err := ctx.Err(); err != nil {
		return model.Record{}, err
	}
	var rec model.Record
	err := p.db.View(func(txn *badger.Txn) error {
		version, err := readInt(txn, p.versionKey)
		if err != nil {
			return err
		}
		if version > model.SnapshotSchemaVersion {
			return fmt.Errorf("snapshot has schema version %d, newer than supported %d", version, model.SnapshotSchemaVersion)
		}
		if rec.LastID, err = readInt(txn, p.lastIDKey); err != nil {
			return err
		}

		item, err := txn.Get(p.key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		rec.Payload, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return model.Record{}, fmt.Errorf("failed to read snapshot %q: %w", p.key, err)
	}
	return rec, nil
}

func (p *BadgerPersister) Save(ctx context.Context, rec model.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(p.versionKey, []byte(strconv.Itoa(model.SnapshotSchemaVersion))); err != nil {
			return err
		}
		if err := txn.Set(p.lastIDKey, []byte(strconv.FormatInt(rec.LastID, 10))); err != nil {
			return err
		}
		return txn.Set(p.key, rec.Payload)
	})
	if err != nil {
		return fmt.Errorf("failed to write snapshot %q: %w", p.key, err)
	}
	return nil
}
