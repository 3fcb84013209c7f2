// Package schedule holds the committed dispatch schedule and the copy-on-write overlays that
// simulation sessions and commits replay change logs onto.
package schedule

import (
	"sort"

	"github.com/sugukuru-dev/dispatch-manager/backend/internal/availability"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
)

// View is a resolved schedule: either a committed Snapshot or a Snapshot with an Overlay on top.
type View interface {
	availability.Lookup
	Slot(clientID string, date domain.Date) domain.Slot
	Slots() []domain.Slot
}

// slotState values are shared between snapshots and overlays, so assignments is never
// modified in place.
type slotState struct {
	required    int
	assignments []domain.Assignment
}

func (st slotState) empty() bool {
	return st.required == 0 && len(st.assignments) == 0
}

func (st slotState) find(workerID string) (domain.Assignment, int) {
	for i, a := range st.assignments {
		if a.WorkerID == workerID {
			return a, i
		}
	}
	return domain.Assignment{}, -1
}

func (st slotState) with(a domain.Assignment) slotState {
	next := make([]domain.Assignment, len(st.assignments), len(st.assignments)+1)
	copy(next, st.assignments)
	return slotState{required: st.required, assignments: append(next, a)}
}

func (st slotState) without(i int) slotState {
	next := make([]domain.Assignment, 0, len(st.assignments)-1)
	next = append(next, st.assignments[:i]...)
	next = append(next, st.assignments[i+1:]...)
	return slotState{required: st.required, assignments: next}
}

func (st slotState) toSlot(key domain.SlotKey) domain.Slot {
	assignments := make([]domain.Assignment, len(st.assignments))
	copy(assignments, st.assignments)
	return domain.Slot{
		ClientID:      key.ClientID,
		Date:          key.Date,
		RequiredCount: st.required,
		Assignments:   assignments,
	}
}

// Snapshot is the committed schedule at one version. It is immutable once built.
type Snapshot struct {
	version int64
	slots   map[domain.SlotKey]slotState
	index   *availability.Index
}

func newSnapshot(version int64, slots map[domain.SlotKey]slotState) *Snapshot {
	s := &Snapshot{version: version, slots: slots}
	s.index = availability.Build(s.Slots())
	return s
}

// NewSnapshot builds a snapshot from persisted slots. Later entries for the same key win.
func NewSnapshot(version int64, slots []domain.Slot) *Snapshot {
	states := make(map[domain.SlotKey]slotState, len(slots))
	for _, slot := range slots {
		st := slotState{required: slot.RequiredCount}
		st.assignments = append(st.assignments, slot.Assignments...)
		if st.empty() {
			continue
		}
		states[slot.Key()] = st
	}
	return newSnapshot(version, states)
}

func (s *Snapshot) Version() int64 {
	return s.version
}

func (s *Snapshot) Slot(clientID string, date domain.Date) domain.Slot {
	key := domain.SlotKey{ClientID: clientID, Date: date}
	return s.slots[key].toSlot(key)
}

// Slots returns every non-empty slot ordered by date, then client.
func (s *Snapshot) Slots() []domain.Slot {
	out := make([]domain.Slot, 0, len(s.slots))
	for key, st := range s.slots {
		out = append(out, st.toSlot(key))
	}
	sortSlots(out)
	return out
}

func (s *Snapshot) Booking(workerID string, date domain.Date) (string, bool) {
	return s.index.Booking(workerID, date)
}

func sortSlots(slots []domain.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Date != slots[j].Date {
			return slots[i].Date < slots[j].Date
		}
		return slots[i].ClientID < slots[j].ClientID
	})
}
