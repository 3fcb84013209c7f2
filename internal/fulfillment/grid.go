package fulfillment

import (
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
)

// SlotReader is the part of a schedule view the grid needs.
type SlotReader interface {
	Slot(clientID string, date domain.Date) domain.Slot
}

// Names resolves worker display names; unknown ids are rendered as the id itself.
type Names func(workerID string) string

type WorkerCell struct {
	WorkerID string                  `json:"workerID"`
	Name     string                  `json:"name"`
	Status   domain.AssignmentStatus `json:"status"`
}

type DayCell struct {
	Workers   []WorkerCell      `json:"workers"`
	Confirmed int               `json:"count"`
	Tentative int               `json:"tentative"`
	Required  int               `json:"required"`
	Status    domain.SlotStatus `json:"status"`
}

type ClientRow struct {
	ClientID string                  `json:"clientOrgID"`
	Name     string                  `json:"clientName"`
	Region   string                  `json:"region"`
	Division domain.BusinessDivision `json:"businessDivision"`
	Days     map[domain.Date]DayCell `json:"slots"`
}

type Grid struct {
	WeekStart domain.Date   `json:"weekStart"`
	WeekEnd   domain.Date   `json:"weekEnd"`
	Days      []domain.Date `json:"days"`
	Clients   []ClientRow   `json:"clients"`
	Summary   Metrics       `json:"summary"`
}

// WeekGrid lays out clients x 7 days starting at weekStart. The summary covers exactly the cells
// in the grid.
func WeekGrid(view SlotReader, clients []domain.ClientSite, weekStart domain.Date, names Names) Grid {
	days := domain.Week(weekStart)
	grid := Grid{
		WeekStart: weekStart,
		WeekEnd:   days[len(days)-1],
		Days:      days,
		Clients:   make([]ClientRow, 0, len(clients)),
	}

	var all []domain.Slot
	for _, client := range clients {
		row := ClientRow{
			ClientID: client.ID,
			Name:     client.DisplayName,
			Region:   client.Region,
			Division: client.Division,
			Days:     make(map[domain.Date]DayCell, len(days)),
		}
		for _, day := range days {
			slot := view.Slot(client.ID, day)
			all = append(all, slot)
			res := Evaluate(slot)

			cell := DayCell{
				Workers:   make([]WorkerCell, 0, len(slot.Assignments)),
				Confirmed: res.Confirmed,
				Tentative: res.Tentative,
				Required:  res.Required,
				Status:    res.Status,
			}
			for _, a := range slot.Assignments {
				name := a.WorkerID
				if names != nil {
					name = names(a.WorkerID)
				}
				cell.Workers = append(cell.Workers, WorkerCell{WorkerID: a.WorkerID, Name: name, Status: a.Status})
			}
			row.Days[day] = cell
		}
		grid.Clients = append(grid.Clients, row)
	}

	grid.Summary = Summarize(all)
	return grid
}

// Range collects the slots of the given clients over [from, to].
func Range(view SlotReader, clientIDs []string, from, to domain.Date) []domain.Slot {
	days := domain.DaysBetween(from, to)
	out := make([]domain.Slot, 0, len(days)*len(clientIDs))
	for _, day := range days {
		for _, id := range clientIDs {
			out = append(out, view.Slot(id, day))
		}
	}
	return out
}
