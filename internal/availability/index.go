// Package availability answers "is this worker free on this date" from confirmed assignments.
//
// An Index is built once per committed snapshot. Simulation sessions layer an Overlay on top of it
// so that each proposed change updates only the bookings it touches.
package availability

import (
	"sort"

	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
)

// Lookup reports the client where a worker holds a confirmed assignment on a date.
type Lookup interface {
	Booking(workerID string, date domain.Date) (clientID string, ok bool)
}

// Index maps date -> worker -> client for confirmed assignments only. It is read-only after Build.
type Index struct {
	booked map[domain.Date]map[string]string
}

func Build(slots []domain.Slot) *Index {
	idx := &Index{booked: make(map[domain.Date]map[string]string)}
	for _, slot := range slots {
		for _, a := range slot.Assignments {
			if a.Status != domain.AssignmentConfirmed {
				continue
			}
			byWorker, ok := idx.booked[slot.Date]
			if !ok {
				byWorker = make(map[string]string)
				idx.booked[slot.Date] = byWorker
			}
			byWorker[a.WorkerID] = slot.ClientID
		}
	}
	return idx
}

func (i *Index) Booking(workerID string, date domain.Date) (string, bool) {
	if i == nil {
		return "", false
	}
	clientID, ok := i.booked[date][workerID]
	return clientID, ok
}

// Bookings returns the number of confirmed (worker, date) pairs in the index.
func (i *Index) Bookings() int {
	n := 0
	for _, byWorker := range i.booked {
		n += len(byWorker)
	}
	return n
}

func IsFree(view Lookup, workerID string, date domain.Date) bool {
	_, booked := view.Booking(workerID, date)
	return !booked
}

// FreeWorkers filters candidates down to those without a confirmed assignment on date.
// The result is sorted and deduplicated.
func FreeWorkers(view Lookup, date domain.Date, candidates []string) []string {
	seen := make(map[string]struct{}, len(candidates))
	free := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if IsFree(view, id, date) {
			free = append(free, id)
		}
	}
	sort.Strings(free)
	return free
}
