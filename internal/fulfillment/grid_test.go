package fulfillment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
)

type mapReader map[domain.SlotKey]domain.Slot

func (m mapReader) Slot(clientID string, date domain.Date) domain.Slot {
	if s, ok := m[domain.SlotKey{ClientID: clientID, Date: date}]; ok {
		return s
	}
	return domain.Slot{ClientID: clientID, Date: date, Assignments: []domain.Assignment{}}
}

func TestWeekGrid(t *testing.T) {
	view := mapReader{
		{ClientID: "farm-a", Date: "2025-04-08"}: {
			ClientID:      "farm-a",
			Date:          "2025-04-08",
			RequiredCount: 2,
			Assignments: []domain.Assignment{
				{WorkerID: "w1", Status: domain.AssignmentConfirmed},
				{WorkerID: "w2", Status: domain.AssignmentTentative},
			},
		},
	}
	clients := []domain.ClientSite{
		{ID: "farm-a", DisplayName: "Aso Farm", Region: "Kumamoto", Division: domain.DivisionDispatch},
		{ID: "farm-b", DisplayName: "Biei Farm", Region: "Hokkaido", Division: domain.DivisionDispatch},
	}
	names := func(id string) string {
		if id == "w1" {
			return "Budi"
		}
		return id
	}

	grid := WeekGrid(view, clients, "2025-04-07", names)

	assert.Equal(t, domain.Date("2025-04-13"), grid.WeekEnd)
	require.Len(t, grid.Clients, 2)
	require.Len(t, grid.Clients[0].Days, 7)

	cell := grid.Clients[0].Days["2025-04-08"]
	assert.Equal(t, domain.SlotPartial, cell.Status)
	assert.Equal(t, 1, cell.Confirmed)
	assert.Equal(t, 1, cell.Tentative)
	assert.Equal(t, "Budi", cell.Workers[0].Name)
	assert.Equal(t, "w2", cell.Workers[1].Name)

	empty := grid.Clients[1].Days["2025-04-07"]
	assert.Equal(t, domain.SlotFulfilled, empty.Status)
	assert.NotNil(t, empty.Workers)

	assert.Equal(t, 2, grid.Summary.TotalRequired)
	assert.Equal(t, 1, grid.Summary.TotalConfirmed)
	assert.Equal(t, 0.5, grid.Summary.FillRate)
	assert.Equal(t, 1, grid.Summary.DistinctWorkers)
}

func TestRange(t *testing.T) {
	slots := Range(mapReader{}, []string{"farm-a", "farm-b"}, "2025-04-07", "2025-04-09")
	assert.Len(t, slots, 6)
	assert.Empty(t, Range(mapReader{}, []string{"farm-a"}, "2025-04-09", "2025-04-07"))
}
