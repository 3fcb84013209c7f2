package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
)

func testSlots() []domain.Slot {
	return []domain.Slot{
		{
			ClientID: "farm-a",
			Date:     "2025-04-07",
			Assignments: []domain.Assignment{
				{WorkerID: "w1", Status: domain.AssignmentConfirmed},
				{WorkerID: "w2", Status: domain.AssignmentTentative},
			},
		},
		{
			ClientID: "farm-b",
			Date:     "2025-04-08",
			Assignments: []domain.Assignment{
				{WorkerID: "w1", Status: domain.AssignmentConfirmed},
			},
		},
	}
}

func TestIndexOnlyCountsConfirmed(t *testing.T) {
	idx := Build(testSlots())

	clientID, ok := idx.Booking("w1", "2025-04-07")
	assert.True(t, ok)
	assert.Equal(t, "farm-a", clientID)

	assert.True(t, IsFree(idx, "w2", "2025-04-07"), "tentative assignments do not block")
	assert.False(t, IsFree(idx, "w1", "2025-04-08"))
	assert.True(t, IsFree(idx, "w1", "2025-04-09"))
	assert.Equal(t, 2, idx.Bookings())
}

func TestFreeWorkersFiltersCandidates(t *testing.T) {
	idx := Build(testSlots())

	free := FreeWorkers(idx, "2025-04-07", []string{"w3", "w1", "w2", "w3"})
	assert.Equal(t, []string{"w2", "w3"}, free)

	assert.Empty(t, FreeWorkers(idx, "2025-04-07", nil))
}

func TestNilIndexIsEmpty(t *testing.T) {
	var idx *Index
	assert.True(t, IsFree(idx, "w1", "2025-04-07"))
}

func TestOverlayLayersOverBase(t *testing.T) {
	idx := Build(testSlots())
	ov := NewOverlay(idx)

	ov.Release("w1", "2025-04-07")
	ov.Book("w2", "2025-04-07", "farm-c")

	assert.True(t, IsFree(ov, "w1", "2025-04-07"))
	clientID, ok := ov.Booking("w2", "2025-04-07")
	assert.True(t, ok)
	assert.Equal(t, "farm-c", clientID)

	// base untouched
	assert.False(t, IsFree(idx, "w1", "2025-04-07"))
	assert.True(t, IsFree(idx, "w2", "2025-04-07"))

	clone := ov.Clone()
	clone.Book("w1", "2025-04-07", "farm-d")
	assert.True(t, IsFree(ov, "w1", "2025-04-07"), "clone must not write through")
	assert.False(t, IsFree(clone, "w1", "2025-04-07"))
}
