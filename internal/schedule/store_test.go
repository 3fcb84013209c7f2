package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
)

type fakePersister struct {
	version int64
	slots   map[domain.SlotKey]domain.Slot
	saveErr error
	saves   int
}

func newFakePersister() *fakePersister {
	return &fakePersister{slots: make(map[domain.SlotKey]domain.Slot)}
}

func (p *fakePersister) LoadSchedule(context.Context) (int64, []domain.Slot, error) {
	out := make([]domain.Slot, 0, len(p.slots))
	for _, s := range p.slots {
		out = append(out, s)
	}
	return p.version, out, nil
}

func (p *fakePersister) SaveSchedule(_ context.Context, baseVersion, newVersion int64, slots []domain.Slot) error {
	if p.saveErr != nil {
		return p.saveErr
	}
	if baseVersion != p.version {
		return &domain.ConflictError{ExpectedVersion: baseVersion, CurrentVersion: p.version}
	}
	for _, s := range slots {
		p.slots[s.Key()] = s
	}
	p.version = newVersion
	p.saves++
	return nil
}

func TestStoreStartsEmpty(t *testing.T) {
	store := NewStore(nil)

	assert.Equal(t, int64(0), store.CurrentVersion())
	slot := store.GetSlot("farm-a", monday)
	assert.Equal(t, 0, slot.RequiredCount)
	assert.Empty(t, slot.Assignments)
}

func TestApplyAtomicBumpsVersionOnce(t *testing.T) {
	store := NewStore(nil)

	version, err := store.ApplyAtomic(context.Background(), []domain.Change{
		domain.Require("farm-a", monday, 2),
		domain.Add("w1", "farm-a", monday),
		domain.Add("w2", "farm-a", monday),
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
	assert.Equal(t, int64(1), store.CurrentVersion())

	slot := store.GetSlot("farm-a", monday)
	assert.Equal(t, 2, slot.RequiredCount)
	assert.Len(t, slot.Assignments, 2)
}

func TestApplyAtomicConflict(t *testing.T) {
	store := NewStore(nil)
	_, err := store.ApplyAtomic(context.Background(), []domain.Change{domain.Add("w1", "farm-a", monday)}, 0)
	require.NoError(t, err)
	before := store.Snapshot().Slots()

	_, err = store.ApplyAtomic(context.Background(), []domain.Change{domain.Add("w2", "farm-a", monday)}, 0)

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(0), conflict.ExpectedVersion)
	assert.Equal(t, int64(1), conflict.CurrentVersion)
	assert.Equal(t, before, store.Snapshot().Slots())
	assert.Equal(t, int64(1), store.CurrentVersion())
}

func TestApplyAtomicRejectsWholeBatchOnDoubleBooking(t *testing.T) {
	store := NewStore(nil)

	_, err := store.ApplyAtomic(context.Background(), []domain.Change{
		domain.Add("w1", "farm-a", monday),
		domain.Add("w2", "farm-a", monday),
		domain.Add("w1", "farm-b", monday),
	}, 0)

	var dbErr *domain.DoubleBookingError
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, "w1", dbErr.WorkerID)
	assert.Equal(t, int64(0), store.CurrentVersion())
	assert.Empty(t, store.Snapshot().Slots())
}

func TestApplyAtomicRejectsTentative(t *testing.T) {
	store := NewStore(nil)

	_, err := store.ApplyAtomic(context.Background(), []domain.Change{domain.AddTentative("w1", "farm-a", monday)}, 0)

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, int64(0), store.CurrentVersion())
}

func TestApplyAtomicIdempotentRemove(t *testing.T) {
	store := NewStore(nil)
	_, err := store.ApplyAtomic(context.Background(), []domain.Change{domain.Add("w1", "farm-a", monday)}, 0)
	require.NoError(t, err)

	version, err := store.ApplyAtomic(context.Background(), []domain.Change{
		domain.Remove("w9", "farm-a", monday),
		domain.Remove("w1", "farm-a", monday),
		domain.Remove("w1", "farm-a", monday),
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
	assert.Empty(t, store.GetSlot("farm-a", monday).Assignments)
}

func TestApplyAtomicPersisterFailureKeepsState(t *testing.T) {
	p := newFakePersister()
	store := NewStore(p)
	_, err := store.ApplyAtomic(context.Background(), []domain.Change{domain.Add("w1", "farm-a", monday)}, 0)
	require.NoError(t, err)

	p.saveErr = errors.New("disk full")
	_, err = store.ApplyAtomic(context.Background(), []domain.Change{domain.Add("w2", "farm-a", monday)}, 1)
	require.Error(t, err)
	assert.Equal(t, int64(1), store.CurrentVersion())
	assert.Len(t, store.GetSlot("farm-a", monday).Assignments, 1)
}

func TestApplyAtomicReloadsAfterPersistedConflict(t *testing.T) {
	ctx := context.Background()
	p := newFakePersister()
	ahead := NewStore(p)
	behind := NewStore(p)

	_, err := ahead.ApplyAtomic(ctx, []domain.Change{domain.Add("w1", "farm-a", monday)}, 0)
	require.NoError(t, err)

	_, err = behind.ApplyAtomic(ctx, []domain.Change{domain.Add("w2", "farm-a", monday)}, 0)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)

	assert.Equal(t, int64(1), behind.CurrentVersion())
	_, booked := behind.Snapshot().Booking("w1", monday)
	assert.True(t, booked)

	version, err := behind.ApplyAtomic(ctx, []domain.Change{domain.Add("w2", "farm-a", monday)}, behind.CurrentVersion())
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
}

func TestStoreLoadHydratesFromPersister(t *testing.T) {
	p := newFakePersister()
	first := NewStore(p)
	_, err := first.ApplyAtomic(context.Background(), []domain.Change{
		domain.Require("farm-a", tuesday, 3),
		domain.Add("w1", "farm-a", tuesday),
	}, 0)
	require.NoError(t, err)

	second := NewStore(p)
	require.NoError(t, second.Load(context.Background()))

	assert.Equal(t, int64(1), second.CurrentVersion())
	slot := second.GetSlot("farm-a", tuesday)
	assert.Equal(t, 3, slot.RequiredCount)
	_, booked := second.Snapshot().Booking("w1", tuesday)
	assert.True(t, booked)
}

func TestApplyAtomicSingleWinnerUnderContention(t *testing.T) {
	store := NewStore(nil)

	var wg sync.WaitGroup
	results := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			worker := string(rune('a' + i))
			_, results[i] = store.ApplyAtomic(context.Background(), []domain.Change{domain.Add(worker, "farm-a", monday)}, 0)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		var conflict *domain.ConflictError
		assert.ErrorAs(t, err, &conflict)
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, int64(1), store.CurrentVersion())
}
