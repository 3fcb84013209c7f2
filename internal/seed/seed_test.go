package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/registry"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/schedule"
)

func TestRandomRegistryIsLoadable(t *testing.T) {
	doc := RandomRegistry(5, 40)

	reg, err := registry.NewStatic(doc)
	require.NoError(t, err)
	assert.Len(t, reg.Clients(), 5)
	assert.Len(t, reg.Workers(), 40)
}

func TestRandomWeeksCommitCleanly(t *testing.T) {
	doc := RandomRegistry(6, 20)
	store := schedule.NewStore(nil)
	ctx := context.Background()

	for _, weekStart := range []domain.Date{"2025-04-07", "2025-04-07", "2025-04-14"} {
		changes := RandomWeek(doc, weekStart, 0.8, Bookings(store.Snapshot().Slots()))
		_, err := store.ApplyAtomic(ctx, changes, store.CurrentVersion())
		require.NoError(t, err)
	}

	assert.Equal(t, int64(3), store.CurrentVersion())
	for _, slot := range store.Snapshot().Slots() {
		assert.True(t, slot.Date.Valid())
	}
}
