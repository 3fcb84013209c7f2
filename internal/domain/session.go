package domain

import "time"

type SessionStatus string

const (
	SessionDraft     SessionStatus = "draft"
	SessionCommitted SessionStatus = "committed"
	SessionDiscarded SessionStatus = "discarded"
)

type SimulationSession struct {
	ID          string        `json:"sessionID"`
	Name        string        `json:"sessionName"`
	PlannerID   string        `json:"plannerID"`
	WeekStart   Date          `json:"weekStart"`
	BaseVersion int64         `json:"baseVersion"`
	Changes     []Change      `json:"changes"`
	Status      SessionStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
}

type CommitEvent struct {
	SessionID   string    `json:"sessionID"`
	SessionName string    `json:"sessionName"`
	PlannerID   string    `json:"plannerID"`
	BaseVersion int64     `json:"baseVersion"`
	NewVersion  int64     `json:"newVersion"`
	Changes     []Change  `json:"changes"`
	CommittedAt time.Time `json:"committedAt"`
}
