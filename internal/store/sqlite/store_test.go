package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"strikebot/internal/store/model"
)

func openTemp(t *testing.T) (*SqliteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "strikebot.db")
	s, err := NewSqliteStore(path)
	require.NoError(t, err)
	return s, path
}

func TestCycleRoundTripThroughUnitOfWork(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()
	ctx := context.Background()

	uow, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Cycles().Save(ctx, &model.CycleModel{
		TraceID:   "t-1",
		StartedAt: 1000,
		Outcome:   "filled",
		Ticker:    "KX-T1",
		Report:    datatypes.JSON(`{"outcome":"filled"}`),
		Attempts: []model.AttemptModel{
			{Number: 2, Outcome: "filled", OrderID: "ord-1"},
			{Number: 1, Outcome: "network_error", Error: "reset"},
		},
	}))
	require.NoError(t, uow.Commit())

	got, err := s.Cycles().FindByTraceID(ctx, "t-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "filled", got.Outcome)
	require.Len(t, got.Attempts, 2)
	assert.Equal(t, 1, got.Attempts[0].Number)
	assert.JSONEq(t, `{"outcome":"filled"}`, string(got.Report))

	missing, err := s.Cycles().FindByTraceID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRollbackDiscards(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()
	ctx := context.Background()

	uow, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Cycles().Save(ctx, &model.CycleModel{TraceID: "t-x", Outcome: "vetoed"}))
	require.NoError(t, uow.Rollback())

	list, err := s.Cycles().ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListRecentOrdersNewestFirst(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()
	ctx := context.Background()
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Cycles().Save(ctx, &model.CycleModel{TraceID: id, StartedAt: int64(i)}))
	}
	list, err := s.Cycles().ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].TraceID)
	assert.Equal(t, "b", list[1].TraceID)
}

func TestMarkerSurvivesReopen(t *testing.T) {
	s, path := openTemp(t)
	hour := time.Date(2025, 10, 14, 20, 15, 4, 0, time.UTC)

	m := s.Marker()
	fired, err := m.Fired(hour)
	require.NoError(t, err)
	assert.False(t, fired)
	require.NoError(t, m.Mark(hour))
	require.NoError(t, m.Mark(hour.Add(time.Minute)), "marking twice in one hour is a no-op")
	require.NoError(t, s.Close())

	reopened, err := NewSqliteStore(path)
	require.NoError(t, err)
	defer reopened.Close()
	fired, err = reopened.Marker().Fired(hour.Add(30 * time.Minute))
	require.NoError(t, err)
	assert.True(t, fired)
	fired, err = reopened.Marker().Fired(hour.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, fired)
}

func TestHourMarkCommitsWithUnitOfWork(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()
	ctx := context.Background()
	hour := time.Date(2025, 10, 14, 21, 0, 0, 0, time.UTC)

	uow, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Hours().Mark(ctx, hour))
	require.NoError(t, uow.Rollback())
	fired, err := s.Hours().Exists(ctx, hour)
	require.NoError(t, err)
	assert.False(t, fired, "rolled back mark must not persist")

	uow, err = s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Hours().Mark(ctx, hour.Add(10*time.Minute)))
	require.NoError(t, uow.Commit())
	fired, err = s.Marker().Fired(hour.Add(59 * time.Minute))
	require.NoError(t, err)
	assert.True(t, fired)
}
