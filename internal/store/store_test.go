package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"table-reservation-backend/internal/mocks"
	"table-reservation-backend/internal/model"
)

// memPersister keeps the last saved record in memory.
type memPersister struct {
	payload []byte
	lastID  int64
	saves   int
}

func (m *memPersister) Load(ctx context.Context) (model.Record, error) {
	return model.Record{Payload: m.payload, LastID: m.lastID}, nil
}

func (m *memPersister) Save(ctx context.Context, rec model.Record) error {
	m.payload = append([]byte(nil), rec.Payload...)
	m.lastID = rec.LastID
	m.saves++
	return nil
}

func reservation(id int64, date, tm, table string) model.Reservation {
	at := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	return model.Reservation{ID: id, ClientName: "Cliente", Date: date, Time: tm, People: 2, Table: table, CreatedAt: at, UpdatedAt: at}
}

func openStore(t *testing.T, p Persister) *Store {
	t.Helper()
	s, err := Open(context.Background(), p, slog.Default())
	require.NoError(t, err)
	return s
}

func TestOpen_PayloadStates(t *testing.T) {
	testCases := []struct {
		name          string
		payload       []byte
		expectedCount int
		recovered     bool
	}{
		{name: "Nothing persisted", payload: nil, expectedCount: 0},
		{name: "Empty array", payload: []byte(`[]`), expectedCount: 0},
		{name: "Null", payload: []byte(`null`), expectedCount: 0},
		{name: "Corrupt JSON", payload: []byte(`[{"id":1,`), expectedCount: 0, recovered: true},
		{name: "Wrong shape", payload: []byte(`{"id":1}`), expectedCount: 0, recovered: true},
		{name: "Two records", payload: []byte(`[{"id":1,"table":"T1"},{"id":2,"table":"T2"}]`), expectedCount: 2},
		{name: "Duplicate ids keep the first", payload: []byte(`[{"id":1,"table":"T1"},{"id":1,"table":"T2"}]`), expectedCount: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := openStore(t, &memPersister{payload: tc.payload})
			assert.Equal(t, tc.expectedCount, s.Len())
			assert.Equal(t, tc.recovered, s.Recovered())
		})
	}
}

func TestOpen_LegacyBrowserPayload(t *testing.T) {
	legacy := `[{"id":1760000000000,"clientName":"Ana","date":"2026-10-20","time":"12:00","people":2,"table":"T1","createdAt":"2026-10-01T10:00:00.000Z"}]`
	s := openStore(t, &memPersister{payload: []byte(legacy)})

	r, ok := s.Find(1760000000000)
	require.True(t, ok)
	assert.Equal(t, "Ana", r.ClientName)
	assert.Equal(t, time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC), r.CreatedAt.UTC())
	assert.Equal(t, r.CreatedAt, r.UpdatedAt)
	assert.Equal(t, int64(1760000000000), s.MaxID())
}

func TestOpen_LoadFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := mocks.NewMockPersister(ctrl)
	p.EXPECT().Load(gomock.Any()).Return(model.Record{}, errors.New("disk unavailable"))

	s, err := Open(context.Background(), p, slog.Default())
	assert.Nil(t, s)

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "load", perr.Op)
}

func TestList_SortedByDateThenTime(t *testing.T) {
	p := &memPersister{}
	s := openStore(t, p)
	ctx := context.Background()

	inserts := []model.Reservation{
		reservation(1, "2026-10-20", "21:00", "T1"),
		reservation(2, "2026-10-18", "13:00", "T1"),
		reservation(3, "2026-10-20", "09:00", "T2"),
		reservation(4, "2026-10-18", "13:00", "T3"),
		reservation(5, "2026-10-18", "13:00", "T2"),
	}
	for _, r := range inserts {
		require.NoError(t, s.Insert(ctx, r))
	}

	var ids []int64
	for _, r := range s.List() {
		ids = append(ids, r.ID)
	}
	// Same date and time keep insertion order: 2, 4, 5.
	assert.Equal(t, []int64{2, 4, 5, 3, 1}, ids)

	// The underlying order is untouched.
	assert.Equal(t, int64(1), s.Snapshot()[0].ID)
}

func TestMutations_PersistFullSnapshot(t *testing.T) {
	p := &memPersister{}
	s := openStore(t, p)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, reservation(1, "2026-10-20", "12:00", "T1")))
	require.NoError(t, s.Insert(ctx, reservation(2, "2026-10-20", "13:00", "T1")))
	assert.Equal(t, 2, p.saves)
	assert.ErrorIs(t, s.Insert(ctx, reservation(2, "2026-10-21", "13:00", "T1")), ErrDuplicateID)

	updated := reservation(1, "2026-10-20", "12:00", "T1")
	updated.People = 6
	require.NoError(t, s.Replace(ctx, updated))
	assert.ErrorIs(t, s.Replace(ctx, reservation(9, "2026-10-20", "12:00", "T1")), ErrNotFound)
	assert.Equal(t, int64(1), s.Snapshot()[0].ID, "replace keeps the position")

	removed, ok, err := s.Remove(ctx, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(2), removed.ID)

	_, ok, err = s.Remove(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 4, p.saves, "removing an unknown id writes nothing")

	var persisted []model.Reservation
	require.NoError(t, json.Unmarshal(p.payload, &persisted))
	require.Len(t, persisted, 1)
	assert.Equal(t, 6, persisted[0].People)

	n, err := s.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.JSONEq(t, `[]`, string(p.payload))
}

func TestMutations_RollBackOnSaveFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := mocks.NewMockPersister(ctrl)
	ctx := context.Background()

	seed, err := json.Marshal([]model.Reservation{reservation(1, "2026-10-20", "12:00", "T1")})
	require.NoError(t, err)
	p.EXPECT().Load(gomock.Any()).Return(model.Record{Payload: seed, LastID: 1}, nil)
	p.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("storage full")).Times(4)

	s := openStore(t, p)
	before := s.Snapshot()

	var perr *PersistenceError
	assert.ErrorAs(t, s.Insert(ctx, reservation(2, "2026-10-20", "13:00", "T1")), &perr)

	changed := reservation(1, "2026-10-20", "12:00", "T1")
	changed.People = 8
	assert.ErrorAs(t, s.Replace(ctx, changed), &perr)

	_, ok, err := s.Remove(ctx, 1)
	assert.False(t, ok)
	assert.ErrorAs(t, err, &perr)

	_, err = s.Reset(ctx)
	assert.ErrorAs(t, err, &perr)
	assert.Equal(t, "save", perr.Op)

	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, int64(1), s.LastID(), "a failed insert does not advance the high-water mark")
}

func TestRoundTrip(t *testing.T) {
	p := &memPersister{}
	s := openStore(t, p)
	ctx := context.Background()

	for i, table := range []string{"T1", "T2", "T3"} {
		require.NoError(t, s.Insert(ctx, reservation(int64(i+1), "2026-10-20", "12:00", table)))
	}

	reopened := openStore(t, &memPersister{payload: p.payload, lastID: p.lastID})
	assert.Equal(t, s.List(), reopened.List())
}

func TestLastID_SurvivesRemovalAndReopen(t *testing.T) {
	ctx := context.Background()
	p := &memPersister{}
	s := openStore(t, p)

	require.NoError(t, s.Insert(ctx, reservation(1, "2026-10-20", "12:00", "T1")))
	require.NoError(t, s.Insert(ctx, reservation(2, "2026-10-20", "13:00", "T1")))
	_, ok, err := s.Remove(ctx, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), s.MaxID())
	assert.Equal(t, int64(2), s.LastID())

	reopened := openStore(t, p)
	assert.Equal(t, int64(2), reopened.LastID())

	_, err = reopened.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), openStore(t, p).LastID(), "clearing keeps the mark")
}

func TestLastID_LegacyPayloadWithoutMark(t *testing.T) {
	s := openStore(t, &memPersister{payload: []byte(`[{"id":7,"table":"T1"},{"id":3,"table":"T2"}]`)})
	assert.Equal(t, int64(7), s.LastID())

	corrupt := openStore(t, &memPersister{payload: []byte(`[{`), lastID: 9})
	assert.True(t, corrupt.Recovered())
	assert.Equal(t, int64(9), corrupt.LastID())
}
