package domain

type AssignmentStatus string

const (
	AssignmentConfirmed AssignmentStatus = "confirmed"
	AssignmentTentative AssignmentStatus = "tentative"
)

func (s AssignmentStatus) Valid() bool {
	return s == AssignmentConfirmed || s == AssignmentTentative
}

type SlotKey struct {
	ClientID string `json:"clientID"`
	Date     Date   `json:"date"`
}

type Assignment struct {
	WorkerID string           `json:"workerID"`
	Status   AssignmentStatus `json:"status"`
}

// Slot is one client site on one date. RequiredCount is 0 and Assignments is empty (never nil)
// when nothing has been recorded for the key.
type Slot struct {
	ClientID      string       `json:"clientID"`
	Date          Date         `json:"date"`
	RequiredCount int          `json:"requiredCount"`
	Assignments   []Assignment `json:"assignments"`
}

func (s Slot) Key() SlotKey {
	return SlotKey{ClientID: s.ClientID, Date: s.Date}
}

func (s Slot) Find(workerID string) (Assignment, bool) {
	for _, a := range s.Assignments {
		if a.WorkerID == workerID {
			return a, true
		}
	}
	return Assignment{}, false
}

func (s Slot) Empty() bool {
	return s.RequiredCount == 0 && len(s.Assignments) == 0
}

type SlotStatus string

const (
	SlotFulfilled SlotStatus = "fulfilled"
	SlotPartial   SlotStatus = "partial"
	SlotShortage  SlotStatus = "shortage"
)
