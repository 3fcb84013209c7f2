package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/config"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/schedule"
	_ "modernc.org/sqlite"
)

func newSQLiteRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "schedule.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.QueryTimeout = 5
	cfg.Database.TransactionTimeout = 5

	repo := NewRepository(cfg, db)
	require.NoError(t, repo.Migrate(context.Background()))
	// migrations are idempotent
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func TestSQLiteStoreSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepository(t)

	store := schedule.NewStore(repo)
	require.NoError(t, store.Load(ctx))
	assert.Equal(t, int64(0), store.CurrentVersion())

	_, err := store.ApplyAtomic(ctx, []domain.Change{
		domain.Require("farm-x", "2025-04-07", 2),
		domain.Add("w1", "farm-x", "2025-04-07"),
		domain.Add("w2", "farm-z", "2025-04-07"),
	}, 0)
	require.NoError(t, err)
	_, err = store.ApplyAtomic(ctx, []domain.Change{
		domain.Move("w2", "farm-z", "farm-x", "2025-04-07"),
	}, 1)
	require.NoError(t, err)

	restarted := schedule.NewStore(repo)
	require.NoError(t, restarted.Load(ctx))

	assert.Equal(t, int64(2), restarted.CurrentVersion())
	assert.Equal(t, store.Snapshot().Slots(), restarted.Snapshot().Slots())
	assert.Empty(t, restarted.GetSlot("farm-z", "2025-04-07").Assignments)
}

func TestSQLiteRejectsStaleWriter(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepository(t)

	first := schedule.NewStore(repo)
	second := schedule.NewStore(repo)
	require.NoError(t, first.Load(ctx))
	require.NoError(t, second.Load(ctx))

	_, err := first.ApplyAtomic(ctx, []domain.Change{domain.Add("w1", "farm-x", "2025-04-07")}, 0)
	require.NoError(t, err)

	// second replica has not seen version 1 yet
	_, err = second.ApplyAtomic(ctx, []domain.Change{domain.Add("w2", "farm-x", "2025-04-07")}, 0)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(1), conflict.CurrentVersion)

	// the conflict pulls the newer schedule in, so a retry on the new base goes through
	assert.Equal(t, int64(1), second.CurrentVersion())
	_, ok := second.GetSlot("farm-x", "2025-04-07").Find("w1")
	assert.True(t, ok)

	version, err := second.ApplyAtomic(ctx, []domain.Change{domain.Add("w2", "farm-x", "2025-04-07")}, second.CurrentVersion())
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	require.NoError(t, first.Load(ctx))
	assert.Len(t, first.GetSlot("farm-x", "2025-04-07").Assignments, 2)
}

func TestSQLiteIndexForbidsDoubleBooking(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepository(t)

	err := repo.SaveSchedule(ctx, 0, 1, []domain.Slot{
		{ClientID: "farm-x", Date: "2025-04-07", Assignments: []domain.Assignment{{WorkerID: "w1", Status: domain.AssignmentConfirmed}}},
		{ClientID: "farm-y", Date: "2025-04-07", Assignments: []domain.Assignment{{WorkerID: "w1", Status: domain.AssignmentConfirmed}}},
	})
	require.Error(t, err)

	version, slots, err := repo.LoadSchedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)
	assert.Empty(t, slots)
}
