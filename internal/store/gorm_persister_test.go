package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"table-reservation-backend/internal/model"
)

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Snapshot{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestGormPersister_SaveAndLoad(t *testing.T) {
	db := newSQLiteDB(t)
	p := NewGormPersister(db, "restaurantReservations")
	ctx := context.Background()

	rec, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec.Payload)
	assert.Zero(t, rec.LastID)

	revision := func() string {
		var row model.Snapshot
		require.NoError(t, db.Select("revision").Where("name = ?", "restaurantReservations").First(&row).Error)
		return row.Revision
	}

	require.NoError(t, p.Save(ctx, model.Record{Payload: []byte(`[{"id":1}]`), LastID: 1}))
	firstRev := revision()
	assert.NotEmpty(t, firstRev)

	require.NoError(t, p.Save(ctx, model.Record{Payload: []byte(`[{"id":1},{"id":2}]`), LastID: 2}))
	assert.NotEqual(t, firstRev, revision())

	rec, err = p.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1},{"id":2}]`, string(rec.Payload))
	assert.Equal(t, int64(2), rec.LastID)

	var rows int64
	require.NoError(t, db.Model(&model.Snapshot{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows, "saves replace the single snapshot row")
}

func TestGormPersister_RejectsNewerSchema(t *testing.T) {
	db := newSQLiteDB(t)
	require.NoError(t, db.Create(&model.Snapshot{
		Name:     "restaurantReservations",
		Version:  model.SnapshotSchemaVersion + 1,
		Revision: uuid.NewString(),
		Payload:  []byte(`[]`),
	}).Error)

	_, err := NewGormPersister(db, "restaurantReservations").Load(context.Background())
	assert.Error(t, err)
}

func TestGormPersister_StoreRoundTrip(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := context.Background()

	s := openStore(t, NewGormPersister(db, "restaurantReservations"))
	require.NoError(t, s.Insert(ctx, reservation(1, "2026-10-21", "20:00", "T2")))
	require.NoError(t, s.Insert(ctx, reservation(2, "2026-10-20", "14:00", "T1")))

	reopened := openStore(t, NewGormPersister(db, "restaurantReservations"))
	assert.Equal(t, s.List(), reopened.List())
}

func TestGormPersister_KeepsLastIDAfterRemovingHighest(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := context.Background()

	s := openStore(t, NewGormPersister(db, "restaurantReservations"))
	require.NoError(t, s.Insert(ctx, reservation(1, "2026-10-20", "12:00", "T1")))
	require.NoError(t, s.Insert(ctx, reservation(2, "2026-10-20", "13:00", "T1")))
	_, _, err := s.Remove(ctx, 2)
	require.NoError(t, err)

	reopened := openStore(t, NewGormPersister(db, "restaurantReservations"))
	assert.Equal(t, int64(1), reopened.MaxID())
	assert.Equal(t, int64(2), reopened.LastID())
}

func TestGormPersister_QueryFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "snapshots"`)).
		WillReturnError(errors.New("connection refused"))

	_, err = Open(context.Background(), NewGormPersister(gormDB, "restaurantReservations"), slog.Default())
	var perr *PersistenceError
	assert.ErrorAs(t, err, &perr)
	assert.NoError(t, mock.ExpectationsWereMet())
}
