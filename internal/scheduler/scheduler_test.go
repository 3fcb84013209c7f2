package scheduler

import (
	"context"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/schedule"
)

const (
	monday  domain.Date = "2025-04-07"
	tuesday domain.Date = "2025-04-08"
)

func seededStore(t *testing.T, changes ...domain.Change) *schedule.Store {
	t.Helper()
	store := schedule.NewStore(nil)
	_, err := store.ApplyAtomic(context.Background(), changes, 0)
	require.NoError(t, err)
	return store
}

func testParameters() Parameters {
	p := DefaultParameters()
	p.Seed = 42
	return p
}

func TestSuggestFillsOpenPositions(t *testing.T) {
	store := seededStore(t,
		domain.Require("farm-a", monday, 2),
		domain.Require("farm-b", monday, 1),
		domain.Add("w1", "farm-a", monday),
	)
	view := store.Snapshot()

	s, err := New(testParameters(), view, []string{"farm-a", "farm-b"}, []string{"w1", "w2", "w3", "w4"}, []domain.Date{monday})
	require.NoError(t, err)

	changes, err := s.Suggest()
	require.NoError(t, err)
	require.Len(t, changes, 2)

	for _, c := range changes {
		assert.Equal(t, domain.ChangeAdd, c.Kind)
		assert.NotEqual(t, "w1", c.WorkerID)
	}

	_, err = store.ApplyAtomic(context.Background(), changes, store.CurrentVersion())
	require.NoError(t, err)
	assert.Len(t, store.GetSlot("farm-a", monday).Assignments, 2)
	assert.Len(t, store.GetSlot("farm-b", monday).Assignments, 1)
}

func TestSuggestNeverDoubleBooksWhenWorkersRunOut(t *testing.T) {
	store := seededStore(t,
		domain.Require("farm-a", monday, 3),
		domain.Require("farm-b", monday, 3),
	)

	s, err := New(testParameters(), store.Snapshot(), []string{"farm-a", "farm-b"}, []string{"w1", "w2", "w3", "w4"}, []domain.Date{monday})
	require.NoError(t, err)

	changes, err := s.Suggest()
	require.NoError(t, err)
	assert.Len(t, changes, 4)

	seen := map[string]bool{}
	for _, c := range changes {
		assert.False(t, seen[c.WorkerID], "worker %s suggested twice", c.WorkerID)
		seen[c.WorkerID] = true
	}
}

func TestSuggestPrefersLessLoadedWorkers(t *testing.T) {
	store := seededStore(t,
		domain.Require("farm-a", monday, 1),
		domain.Add("w1", "farm-z", tuesday),
	)

	s, err := New(testParameters(), store.Snapshot(), []string{"farm-a", "farm-z"}, []string{"w1", "w2"}, []domain.Date{monday, tuesday})
	require.NoError(t, err)

	changes, err := s.Suggest()
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "w2", changes[0].WorkerID)
}

func TestSuggestSkipsWorkersAlreadyInSlot(t *testing.T) {
	store := seededStore(t, domain.Require("farm-a", monday, 1))
	ov := schedule.NewOverlay(store.Snapshot())
	require.NoError(t, ov.Apply(domain.AddTentative("w1", "farm-a", monday), schedule.SessionPolicy))

	s, err := New(testParameters(), ov, []string{"farm-a"}, []string{"w1"}, []domain.Date{monday})
	require.NoError(t, err)

	changes, err := s.Suggest()
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestSuggestWithoutVacancies(t *testing.T) {
	store := seededStore(t, domain.Require("farm-a", monday, 1), domain.Add("w1", "farm-a", monday))

	s, err := New(testParameters(), store.Snapshot(), []string{"farm-a"}, []string{"w1", "w2"}, []domain.Date{monday})
	require.NoError(t, err)

	changes, err := s.Suggest()
	require.NoError(t, err)
	assert.Nil(t, changes)
}

func TestNewRejectsBadParameters(t *testing.T) {
	view := schedule.NewSnapshot(0, nil)

	p := testParameters()
	p.PopulationSize = 0
	_, err := New(p, view, nil, nil, nil)
	assert.Error(t, err)

	p = testParameters()
	p.EliteCount = p.PopulationSize + 1
	_, err = New(p, view, nil, nil, nil)
	assert.Error(t, err)
}

func TestSuggestionsAlwaysCommit(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	days := []domain.Date{monday, tuesday}
	clients := []string{"farm-a", "farm-b", "farm-c"}

	properties.Property("suggested adds apply cleanly on the same base", prop.ForAll(
		func(required []int, workers int, seed int64) bool {
			var setup []domain.Change
			for i, n := range required {
				setup = append(setup, domain.Require(clients[i%len(clients)], days[i%len(days)], n))
			}
			store := schedule.NewStore(nil)
			if _, err := store.ApplyAtomic(context.Background(), setup, 0); err != nil {
				return false
			}

			workerIDs := make([]string, workers)
			for i := range workerIDs {
				workerIDs[i] = fmt.Sprintf("w%d", i)
			}

			p := DefaultParameters()
			p.PopulationSize, p.MaxGenerations, p.Seed = 10, 10, seed+1
			s, err := New(p, store.Snapshot(), clients, workerIDs, days)
			if err != nil {
				return false
			}
			changes, err := s.Suggest()
			if err != nil {
				return false
			}
			_, err = store.ApplyAtomic(context.Background(), changes, store.CurrentVersion())
			return err == nil
		},
		gen.SliceOfN(6, gen.IntRange(0, 4)),
		gen.IntRange(0, 8),
		gen.Int64Range(0, 1000),
	))

	properties.TestingRun(t)
}
