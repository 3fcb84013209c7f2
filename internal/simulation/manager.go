package simulation

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/schedule"
)

// DraftStore mirrors draft session records outside the process. Load returns
// domain.ErrSessionNotFound for unknown or expired ids.
type DraftStore interface {
	Save(ctx context.Context, rec domain.SimulationSession) error
	Load(ctx context.Context, id string) (domain.SimulationSession, error)
	Delete(ctx context.Context, id string) error
}

// Manager tracks the sessions opened through the API.
type Manager struct {
	mu          sync.RWMutex
	store       *schedule.Store
	coordinator *Coordinator
	drafts      DraftStore
	observer    Observer
	sessions    map[string]*Session
}

func NewManager(store *schedule.Store, coordinator *Coordinator, drafts DraftStore, observer Observer) *Manager {
	return &Manager{
		store:       store,
		coordinator: coordinator,
		drafts:      drafts,
		observer:    observer,
		sessions:    make(map[string]*Session),
	}
}

func (m *Manager) Open(ctx context.Context, meta Meta) *Session {
	s := Open(m.store, meta)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	m.mirror(ctx, s)
	m.reportOpen()
	return s
}

// Get returns a known session, restoring a mirrored draft if this process has not seen it.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return s, nil
	}
	if m.drafts == nil {
		return nil, domain.ErrSessionNotFound
	}

	rec, err := m.drafts.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	s, err = restore(m.store, rec)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if existing, ok := m.sessions[id]; ok {
		s = existing
	} else {
		m.sessions[id] = s
	}
	m.mu.Unlock()
	m.reportOpen()
	return s, nil
}

func (m *Manager) List() []domain.SimulationSession {
	m.mu.RLock()
	out := make([]domain.SimulationSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Record())
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (m *Manager) Propose(ctx context.Context, id string, c domain.Change) (*Session, error) {
	s, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ProposeChange(c); err != nil {
		m.observeProposal(err)
		return s, err
	}
	m.observeProposal(nil)
	m.mirror(ctx, s)
	return s, nil
}

func (m *Manager) Commit(ctx context.Context, id string) (int64, error) {
	s, err := m.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	version, err := m.coordinator.Commit(ctx, s)
	if err != nil {
		return 0, err
	}
	m.forget(ctx, s)
	return version, nil
}

func (m *Manager) Discard(ctx context.Context, id string) error {
	s, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Discard(); err != nil {
		return err
	}
	m.forget(ctx, s)
	return nil
}

func (m *Manager) mirror(ctx context.Context, s *Session) {
	if m.drafts == nil {
		return
	}
	if err := m.drafts.Save(ctx, s.Record()); err != nil {
		slog.Warn("failed to mirror simulation draft", "session", s.ID(), "error", err)
	}
}

// forget drops an ended session; its id resolves to ErrSessionNotFound afterwards.
func (m *Manager) forget(ctx context.Context, s *Session) {
	m.mu.Lock()
	delete(m.sessions, s.ID())
	m.mu.Unlock()

	m.reportOpen()
	if m.drafts == nil {
		return
	}
	if err := m.drafts.Delete(ctx, s.ID()); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		slog.Warn("failed to delete simulation draft", "session", s.ID(), "error", err)
	}
}

func (m *Manager) reportOpen() {
	if m.observer == nil {
		return
	}
	m.mu.RLock()
	n := 0
	for _, s := range m.sessions {
		if s.Status() == domain.SessionDraft {
			n++
		}
	}
	m.mu.RUnlock()
	m.observer.SetOpenSessions(n)
}

func (m *Manager) observeProposal(err error) {
	if m.observer == nil {
		return
	}
	if err == nil {
		m.observer.ObserveProposal("ok")
		return
	}
	m.observer.ObserveProposal(domain.ErrorKind(err))
}
