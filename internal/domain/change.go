package domain

import "fmt"

type ChangeKind string

const (
	ChangeAdd     ChangeKind = "add"
	ChangeRemove  ChangeKind = "remove"
	ChangeMove    ChangeKind = "move"
	ChangeRequire ChangeKind = "require"
)

// Change is one entry of a simulation change log. Which fields are meaningful depends on Kind:
//
//	add     WorkerID, ClientID, Date, Status (defaults to confirmed)
//	remove  WorkerID, ClientID, Date
//	move    WorkerID, FromClientID, ToClientID, Date, Status (destination status, defaults to confirmed)
//	require ClientID, Date, RequiredCount
type Change struct {
	Kind          ChangeKind       `json:"action"`
	WorkerID      string           `json:"workerID,omitempty"`
	ClientID      string           `json:"clientID,omitempty"`
	FromClientID  string           `json:"fromClientID,omitempty"`
	ToClientID    string           `json:"toClientID,omitempty"`
	Date          Date             `json:"date"`
	Status        AssignmentStatus `json:"status,omitempty"`
	RequiredCount int              `json:"requiredCount,omitempty"`
}

func Add(workerID, clientID string, date Date) Change {
	return Change{Kind: ChangeAdd, WorkerID: workerID, ClientID: clientID, Date: date, Status: AssignmentConfirmed}
}

func AddTentative(workerID, clientID string, date Date) Change {
	return Change{Kind: ChangeAdd, WorkerID: workerID, ClientID: clientID, Date: date, Status: AssignmentTentative}
}

func Remove(workerID, clientID string, date Date) Change {
	return Change{Kind: ChangeRemove, WorkerID: workerID, ClientID: clientID, Date: date}
}

func Move(workerID, fromClientID, toClientID string, date Date) Change {
	return Change{Kind: ChangeMove, WorkerID: workerID, FromClientID: fromClientID, ToClientID: toClientID, Date: date, Status: AssignmentConfirmed}
}

func Require(clientID string, date Date, requiredCount int) Change {
	return Change{Kind: ChangeRequire, ClientID: clientID, Date: date, RequiredCount: requiredCount}
}

// Normalize fills defaults and checks the change is well formed. It does not look at any schedule.
func (c Change) Normalize() (Change, error) {
	if !c.Date.Valid() {
		return c, &ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", c.Date)}
	}

	if c.Kind == ChangeAdd || c.Kind == ChangeMove {
		if c.Status == "" {
			c.Status = AssignmentConfirmed
		}
		if !c.Status.Valid() {
			return c, &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown assignment status %q", c.Status)}
		}
	}

	switch c.Kind {
	case ChangeAdd:
		if c.WorkerID == "" || c.ClientID == "" {
			return c, &ValidationError{Field: "add", Reason: "workerID and clientID are required"}
		}
	case ChangeRemove:
		if c.WorkerID == "" || c.ClientID == "" {
			return c, &ValidationError{Field: "remove", Reason: "workerID and clientID are required"}
		}
	case ChangeMove:
		if c.WorkerID == "" || c.FromClientID == "" || c.ToClientID == "" {
			return c, &ValidationError{Field: "move", Reason: "workerID, fromClientID and toClientID are required"}
		}
		if c.FromClientID == c.ToClientID {
			return c, &ValidationError{Field: "move", Reason: "source and destination client are the same"}
		}
	case ChangeRequire:
		if c.ClientID == "" {
			return c, &ValidationError{Field: "require", Reason: "clientID is required"}
		}
		if c.RequiredCount < 0 {
			return c, &ValidationError{Field: "requiredCount", Reason: fmt.Sprintf("required count %d is negative", c.RequiredCount)}
		}
	default:
		return c, &ValidationError{Field: "action", Reason: fmt.Sprintf("unknown change action %q", c.Kind)}
	}

	return c, nil
}

func (c Change) String() string {
	switch c.Kind {
	case ChangeMove:
		return fmt.Sprintf("move %s %s->%s on %s", c.WorkerID, c.FromClientID, c.ToClientID, c.Date)
	case ChangeRequire:
		return fmt.Sprintf("require %d at %s on %s", c.RequiredCount, c.ClientID, c.Date)
	default:
		return fmt.Sprintf("%s %s at %s on %s", c.Kind, c.WorkerID, c.ClientID, c.Date)
	}
}
