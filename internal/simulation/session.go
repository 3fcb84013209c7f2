// Package simulation implements planner workspaces: an ordered change log over a snapshot of the
// committed schedule that can be previewed, discarded, or committed atomically.
package simulation

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/schedule"
)

type Meta struct {
	Name      string
	PlannerID string
	WeekStart domain.Date
}

// Session is draft until it is committed or discarded, and never changes after that.
type Session struct {
	mu        sync.Mutex
	id        string
	meta      Meta
	createdAt time.Time
	overlay   *schedule.Overlay
	status    domain.SessionStatus
}

// Open forks a session from the store's current snapshot.
func Open(store *schedule.Store, meta Meta) *Session {
	return &Session{
		id:        uuid.NewString(),
		meta:      meta,
		createdAt: time.Now().UTC(),
		overlay:   schedule.NewOverlay(store.Snapshot()),
		status:    domain.SessionDraft,
	}
}

// restore rebuilds a draft from its record. The store must still be at the record's base version,
// otherwise the draft can no longer be previewed faithfully and must be reopened.
func restore(store *schedule.Store, rec domain.SimulationSession) (*Session, error) {
	if rec.Status != domain.SessionDraft {
		return nil, domain.ErrSessionClosed
	}
	base := store.Snapshot()
	if base.Version() != rec.BaseVersion {
		return nil, &domain.ConflictError{ExpectedVersion: rec.BaseVersion, CurrentVersion: base.Version()}
	}

	s := &Session{
		id:        rec.ID,
		meta:      Meta{Name: rec.Name, PlannerID: rec.PlannerID, WeekStart: rec.WeekStart},
		createdAt: rec.CreatedAt,
		overlay:   schedule.NewOverlay(base),
		status:    domain.SessionDraft,
	}
	for i, c := range rec.Changes {
		if err := s.overlay.Apply(c, schedule.SessionPolicy); err != nil {
			return nil, fmt.Errorf("replay change %d (%s): %w", i+1, c, err)
		}
	}
	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) BaseVersion() int64 {
	return s.overlay.Base().Version()
}

func (s *Session) Status() domain.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) WeekStart() domain.Date {
	return s.meta.WeekStart
}

// ProposeChange validates c against the working view (base plus every accepted change) and
// appends it. A rejected change leaves the session untouched.
func (s *Session) ProposeChange(c domain.Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.SessionDraft {
		return domain.ErrSessionClosed
	}
	return s.overlay.Apply(c, schedule.SessionPolicy)
}

// Preview returns a frozen copy of the working view.
func (s *Session) Preview() schedule.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlay.Clone()
}

func (s *Session) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.SessionDraft {
		return domain.ErrSessionClosed
	}
	s.status = domain.SessionDiscarded
	return nil
}

func (s *Session) Changes() []domain.Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlay.Changes()
}

func (s *Session) Record() domain.SimulationSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record()
}

func (s *Session) record() domain.SimulationSession {
	return domain.SimulationSession{
		ID:          s.id,
		Name:        s.meta.Name,
		PlannerID:   s.meta.PlannerID,
		WeekStart:   s.meta.WeekStart,
		BaseVersion: s.overlay.Base().Version(),
		Changes:     s.overlay.Changes(),
		Status:      s.status,
		CreatedAt:   s.createdAt,
	}
}
