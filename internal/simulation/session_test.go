package simulation

import (
	"context"
	"testing"

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
	if len(changes) > 0 {
		_, err := store.ApplyAtomic(context.Background(), changes, 0)
		require.NoError(t, err)
	}
	return store
}

func TestSessionPreviewSeesProposedChanges(t *testing.T) {
	store := seededStore(t, domain.Require("farm-x", monday, 2))
	s := Open(store, Meta{Name: "week 15", PlannerID: "planner-1", WeekStart: monday})

	require.NoError(t, s.ProposeChange(domain.Add("w1", "farm-x", monday)))
	require.NoError(t, s.ProposeChange(domain.AddTentative("w2", "farm-x", monday)))

	slot := s.Preview().Slot("farm-x", monday)
	assert.Equal(t, 2, slot.RequiredCount)
	assert.Len(t, slot.Assignments, 2)

	// the store is untouched until commit
	assert.Empty(t, store.GetSlot("farm-x", monday).Assignments)
	assert.Equal(t, int64(1), s.BaseVersion())
	assert.Equal(t, domain.SessionDraft, s.Status())
}

func TestSessionRejectsDoubleBookingWithinLog(t *testing.T) {
	store := seededStore(t)
	s := Open(store, Meta{})

	require.NoError(t, s.ProposeChange(domain.Add("w1", "farm-x", monday)))
	err := s.ProposeChange(domain.Add("w1", "farm-y", monday))

	var doubleBooking *domain.DoubleBookingError
	require.ErrorAs(t, err, &doubleBooking)
	assert.Equal(t, "farm-x", doubleBooking.ExistingClientID)
	assert.Len(t, s.Changes(), 1)
}

func TestSessionRemoveOfUnknownAssignmentFails(t *testing.T) {
	s := Open(seededStore(t), Meta{})

	err := s.ProposeChange(domain.Remove("w1", "farm-x", monday))

	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Empty(t, s.Changes())
}

func TestSessionPreviewIsFrozen(t *testing.T) {
	s := Open(seededStore(t), Meta{})
	require.NoError(t, s.ProposeChange(domain.Add("w1", "farm-x", monday)))

	preview := s.Preview()
	require.NoError(t, s.ProposeChange(domain.Add("w2", "farm-x", monday)))

	assert.Len(t, preview.Slot("farm-x", monday).Assignments, 1)
	assert.Len(t, s.Preview().Slot("farm-x", monday).Assignments, 2)
}

func TestDiscardIsTerminal(t *testing.T) {
	store := seededStore(t)
	s := Open(store, Meta{})
	require.NoError(t, s.ProposeChange(domain.Add("w1", "farm-x", monday)))

	require.NoError(t, s.Discard())

	assert.Equal(t, domain.SessionDiscarded, s.Status())
	assert.ErrorIs(t, s.ProposeChange(domain.Add("w2", "farm-x", monday)), domain.ErrSessionClosed)
	assert.ErrorIs(t, s.Discard(), domain.ErrSessionClosed)
	assert.Equal(t, int64(0), store.CurrentVersion())
	assert.Empty(t, store.GetSlot("farm-x", monday).Assignments)
}

func TestRestoreReplaysChanges(t *testing.T) {
	store := seededStore(t, domain.Add("w9", "farm-z", monday))
	s := Open(store, Meta{Name: "restore me", PlannerID: "planner-1", WeekStart: monday})
	require.NoError(t, s.ProposeChange(domain.Add("w1", "farm-x", monday)))
	require.NoError(t, s.ProposeChange(domain.Move("w9", "farm-z", "farm-y", monday)))

	restored, err := restore(store, s.Record())
	require.NoError(t, err)

	assert.Equal(t, s.ID(), restored.ID())
	assert.Equal(t, s.Record(), restored.Record())
	assert.Equal(t, s.Preview().Slots(), restored.Preview().Slots())
}

func TestRestoreRejectsStaleBase(t *testing.T) {
	store := seededStore(t)
	s := Open(store, Meta{})
	rec := s.Record()

	_, err := store.ApplyAtomic(context.Background(), []domain.Change{domain.Add("w1", "farm-x", monday)}, 0)
	require.NoError(t, err)

	_, err = restore(store, rec)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(0), conflict.ExpectedVersion)
	assert.Equal(t, int64(1), conflict.CurrentVersion)
}
