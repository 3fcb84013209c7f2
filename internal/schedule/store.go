package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
)

// Persister durably stores committed slots. SaveSchedule must itself be all-or-nothing and must
// fail with *domain.ConflictError when the durable version is not baseVersion.
type Persister interface {
	LoadSchedule(ctx context.Context) (version int64, slots []domain.Slot, err error)
	SaveSchedule(ctx context.Context, baseVersion, newVersion int64, slots []domain.Slot) error
}

// Store is the committed schedule. Readers take the current snapshot without locking; ApplyAtomic
// calls are serialized.
type Store struct {
	mu        sync.Mutex
	current   atomic.Pointer[Snapshot]
	persister Persister
}

func NewStore(persister Persister) *Store {
	s := &Store{persister: persister}
	s.current.Store(NewSnapshot(0, nil))
	return s
}

// Load replaces the in-memory schedule with what the persister holds.
func (s *Store) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	version, slots, err := s.persister.LoadSchedule(ctx)
	if err != nil {
		return fmt.Errorf("load schedule: %w", err)
	}
	s.current.Store(NewSnapshot(version, slots))
	return nil
}

func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

func (s *Store) CurrentVersion() int64 {
	return s.Snapshot().Version()
}

func (s *Store) GetSlot(clientID string, date domain.Date) domain.Slot {
	return s.Snapshot().Slot(clientID, date)
}

// ApplyAtomic replays changes in order against the live schedule and bumps the version once.
// It fails with *domain.ConflictError if the store is not at expectedBaseVersion, and with the
// change's own error if any change is rejected. Nothing is published unless every change and the
// persister succeed. When the persister reports a conflict another writer got there first, so the
// durable schedule is reloaded before the conflict is returned and a reopened session sees it.
func (s *Store) ApplyAtomic(ctx context.Context, changes []domain.Change, expectedBaseVersion int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.current.Load()
	if base.Version() != expectedBaseVersion {
		return 0, &domain.ConflictError{ExpectedVersion: expectedBaseVersion, CurrentVersion: base.Version()}
	}

	ov := NewOverlay(base)
	for i, c := range changes {
		if err := ov.Apply(c, CommitPolicy); err != nil {
			return 0, fmt.Errorf("change %d (%s): %w", i+1, c, err)
		}
	}

	newVersion := base.Version() + 1
	if s.persister != nil {
		if err := s.persister.SaveSchedule(ctx, base.Version(), newVersion, ov.TouchedSlots()); err != nil {
			var conflict *domain.ConflictError
			if errors.As(err, &conflict) {
				s.reload(ctx)
			}
			return 0, err
		}
	}

	s.current.Store(ov.Materialize(newVersion))
	return newVersion, nil
}

// reload replaces the snapshot with the persisted one. The caller holds s.mu.
func (s *Store) reload(ctx context.Context) {
	version, slots, err := s.persister.LoadSchedule(ctx)
	if err != nil {
		slog.Warn("failed to reload schedule after conflict", "error", err)
		return
	}
	s.current.Store(NewSnapshot(version, slots))
}
