package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/schedule"
)

// Notifier is told about every successful commit. Delivery failures do not undo the commit.
type Notifier interface {
	ScheduleCommitted(ctx context.Context, event domain.CommitEvent) error
}

// Observer receives outcome counts; kinds are "ok" or domain.ErrorKind values.
type Observer interface {
	ObserveProposal(kind string)
	ObserveCommit(kind string)
	SetVersion(version int64)
	SetOpenSessions(n int)
}

type Coordinator struct {
	store    *schedule.Store
	notifier Notifier
	observer Observer
}

func NewCoordinator(store *schedule.Store, notifier Notifier, observer Observer) *Coordinator {
	return &Coordinator{store: store, notifier: notifier, observer: observer}
}

// Commit re-validates the session's log against the live schedule, then applies it with the
// session's base version as the expected version. On any error the session stays draft and the
// store is unchanged.
func (c *Coordinator) Commit(ctx context.Context, s *Session) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.SessionDraft {
		return 0, domain.ErrSessionClosed
	}

	changes := s.overlay.Changes()
	baseVersion := s.overlay.Base().Version()

	live := schedule.NewOverlay(c.store.Snapshot())
	for i, change := range changes {
		if err := live.Apply(change, schedule.RevalidatePolicy); err != nil {
			err = fmt.Errorf("change %d (%s): %w", i+1, change, err)
			c.observeCommit(err)
			return 0, err
		}
	}

	version, err := c.store.ApplyAtomic(ctx, changes, baseVersion)
	if err != nil {
		c.observeCommit(err)
		return 0, err
	}

	s.status = domain.SessionCommitted
	c.observeCommit(nil)
	if c.observer != nil {
		c.observer.SetVersion(version)
	}
	slog.Info("simulation committed", "session", s.id, "baseVersion", baseVersion, "version", version, "changes", len(changes))

	if c.notifier != nil {
		event := domain.CommitEvent{
			SessionID:   s.id,
			SessionName: s.meta.Name,
			PlannerID:   s.meta.PlannerID,
			BaseVersion: baseVersion,
			NewVersion:  version,
			Changes:     changes,
			CommittedAt: time.Now().UTC(),
		}
		if err := c.notifier.ScheduleCommitted(ctx, event); err != nil {
			slog.Error("failed to publish commit event", "session", s.id, "version", version, "error", err)
		}
	}

	return version, nil
}

func (c *Coordinator) observeCommit(err error) {
	if c.observer == nil {
		return
	}
	if err == nil {
		c.observer.ObserveCommit("ok")
		return
	}
	c.observer.ObserveCommit(domain.ErrorKind(err))
}
