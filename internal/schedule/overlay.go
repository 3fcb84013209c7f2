package schedule

import (
	"fmt"

	"github.com/sugukuru-dev/dispatch-manager/backend/internal/availability"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
)

// Policy selects how strictly an Overlay replays changes.
type Policy struct {
	// StrictRemove reports removal of an absent assignment as NotFoundError instead of a no-op.
	StrictRemove bool
	// AllowTentative permits tentative assignments to be added.
	AllowTentative bool
}

var (
	// SessionPolicy is used while a planner explores changes.
	SessionPolicy = Policy{StrictRemove: true, AllowTentative: true}
	// RevalidatePolicy re-checks a session's log against the live schedule before committing.
	RevalidatePolicy = Policy{StrictRemove: true, AllowTentative: false}
	// CommitPolicy is what the store itself enforces inside ApplyAtomic.
	CommitPolicy = Policy{StrictRemove: false, AllowTentative: false}
)

// Overlay is an ordered change log replayed over a base snapshot. Only touched slots are copied;
// the base is never written.
type Overlay struct {
	base    *Snapshot
	touched map[domain.SlotKey]slotState
	index   *availability.Overlay
	changes []domain.Change
}

func NewOverlay(base *Snapshot) *Overlay {
	return &Overlay{
		base:    base,
		touched: make(map[domain.SlotKey]slotState),
		index:   availability.NewOverlay(base.index),
	}
}

func (o *Overlay) Base() *Snapshot {
	return o.base
}

func (o *Overlay) Changes() []domain.Change {
	out := make([]domain.Change, len(o.changes))
	copy(out, o.changes)
	return out
}

func (o *Overlay) state(key domain.SlotKey) slotState {
	if st, ok := o.touched[key]; ok {
		return st
	}
	return o.base.slots[key]
}

func (o *Overlay) Slot(clientID string, date domain.Date) domain.Slot {
	key := domain.SlotKey{ClientID: clientID, Date: date}
	return o.state(key).toSlot(key)
}

func (o *Overlay) Slots() []domain.Slot {
	out := make([]domain.Slot, 0, len(o.base.slots)+len(o.touched))
	for key, st := range o.base.slots {
		if _, ok := o.touched[key]; ok {
			continue
		}
		out = append(out, st.toSlot(key))
	}
	for key, st := range o.touched {
		if st.empty() {
			continue
		}
		out = append(out, st.toSlot(key))
	}
	sortSlots(out)
	return out
}

func (o *Overlay) Booking(workerID string, date domain.Date) (string, bool) {
	return o.index.Booking(workerID, date)
}

// Clone returns an independent overlay over the same base. Later Apply calls on either copy
// are invisible to the other.
func (o *Overlay) Clone() *Overlay {
	touched := make(map[domain.SlotKey]slotState, len(o.touched))
	for k, v := range o.touched {
		touched[k] = v
	}
	return &Overlay{
		base:    o.base,
		touched: touched,
		index:   o.index.Clone(),
		changes: o.Changes(),
	}
}

// Apply validates c against the current view and, on success, records it. A rejected change
// leaves the overlay exactly as it was.
func (o *Overlay) Apply(c domain.Change, p Policy) error {
	c, err := c.Normalize()
	if err != nil {
		return err
	}

	switch c.Kind {
	case domain.ChangeAdd:
		key := domain.SlotKey{ClientID: c.ClientID, Date: c.Date}
		next, err := o.planAdd(o.state(key), key, c.WorkerID, c.Status, "", p)
		if err != nil {
			return err
		}
		o.put(key, next)
		if c.Status == domain.AssignmentConfirmed {
			o.index.Book(c.WorkerID, c.Date, c.ClientID)
		}

	case domain.ChangeRemove:
		key := domain.SlotKey{ClientID: c.ClientID, Date: c.Date}
		st := o.state(key)
		existing, i := st.find(c.WorkerID)
		if i < 0 {
			if p.StrictRemove {
				return &domain.NotFoundError{WorkerID: c.WorkerID, ClientID: c.ClientID, Date: c.Date}
			}
			break
		}
		o.put(key, st.without(i))
		if existing.Status == domain.AssignmentConfirmed {
			o.index.Release(c.WorkerID, c.Date)
		}

	case domain.ChangeMove:
		fromKey := domain.SlotKey{ClientID: c.FromClientID, Date: c.Date}
		toKey := domain.SlotKey{ClientID: c.ToClientID, Date: c.Date}

		fromState := o.state(fromKey)
		released := ""
		if existing, i := fromState.find(c.WorkerID); i >= 0 {
			fromState = fromState.without(i)
			if existing.Status == domain.AssignmentConfirmed {
				released = c.FromClientID
			}
		} else if p.StrictRemove {
			return &domain.NotFoundError{WorkerID: c.WorkerID, ClientID: c.FromClientID, Date: c.Date}
		}

		toState, err := o.planAdd(o.state(toKey), toKey, c.WorkerID, c.Status, released, p)
		if err != nil {
			return err
		}

		o.put(fromKey, fromState)
		o.put(toKey, toState)
		if released != "" {
			o.index.Release(c.WorkerID, c.Date)
		}
		if c.Status == domain.AssignmentConfirmed {
			o.index.Book(c.WorkerID, c.Date, c.ToClientID)
		}

	case domain.ChangeRequire:
		key := domain.SlotKey{ClientID: c.ClientID, Date: c.Date}
		st := o.state(key)
		st.required = c.RequiredCount
		o.put(key, st)
	}

	o.changes = append(o.changes, c)
	return nil
}

// planAdd computes the slot state after adding workerID. released names a client whose confirmed
// booking of the worker on that date is being given up by the same change.
func (o *Overlay) planAdd(st slotState, key domain.SlotKey, workerID string, status domain.AssignmentStatus, released string, p Policy) (slotState, error) {
	if status == domain.AssignmentTentative && !p.AllowTentative {
		return st, &domain.ValidationError{
			Field:  "status",
			Reason: fmt.Sprintf("tentative assignment of worker %s at client %s on %s cannot be committed", workerID, key.ClientID, key.Date),
		}
	}
	if existing, i := st.find(workerID); i >= 0 {
		return st, &domain.ValidationError{
			Field:  "workerID",
			Reason: fmt.Sprintf("worker %s already has a %s assignment at client %s on %s", workerID, existing.Status, key.ClientID, key.Date),
		}
	}
	if status == domain.AssignmentConfirmed {
		if clientID, booked := o.index.Booking(workerID, key.Date); booked && clientID != released {
			return st, &domain.DoubleBookingError{
				WorkerID:         workerID,
				Date:             key.Date,
				ExistingClientID: clientID,
				TargetClientID:   key.ClientID,
			}
		}
	}
	return st.with(domain.Assignment{WorkerID: workerID, Status: status}), nil
}

func (o *Overlay) put(key domain.SlotKey, st slotState) {
	o.touched[key] = st
}

// TouchedSlots returns the resulting state of every slot the change log modified, including
// slots that became empty.
func (o *Overlay) TouchedSlots() []domain.Slot {
	out := make([]domain.Slot, 0, len(o.touched))
	for key, st := range o.touched {
		out = append(out, st.toSlot(key))
	}
	sortSlots(out)
	return out
}

// Materialize folds the overlay into a new snapshot tagged with version.
func (o *Overlay) Materialize(version int64) *Snapshot {
	slots := make(map[domain.SlotKey]slotState, len(o.base.slots)+len(o.touched))
	for k, v := range o.base.slots {
		slots[k] = v
	}
	for k, v := range o.touched {
		if v.empty() {
			delete(slots, k)
			continue
		}
		slots[k] = v
	}
	return newSnapshot(version, slots)
}
