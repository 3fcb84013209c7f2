package utils

import (
	"fmt"

	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/registry"
)

// ValidateSlotsWithRegistry reports every committed slot that names a client or worker the
// registry does not know. The schedule stays usable; unknown ids are rendered as raw ids.
func ValidateSlotsWithRegistry(slots []domain.Slot, reg registry.Registry) []error {
	var errs []error
	for _, slot := range slots {
		if _, ok := reg.Client(slot.ClientID); !ok {
			errs = append(errs, fmt.Errorf("slot %s on %s: unknown client", slot.ClientID, slot.Date))
		}
		for _, a := range slot.Assignments {
			if _, ok := reg.Worker(a.WorkerID); !ok {
				errs = append(errs, fmt.Errorf("slot %s on %s: unknown worker %s", slot.ClientID, slot.Date, a.WorkerID))
			}
		}
	}
	return errs
}

// ValidateChangeWithRegistry rejects changes that reference ids outside the registry.
func ValidateChangeWithRegistry(c domain.Change, reg registry.Registry) error {
	clients := []string{c.ClientID}
	if c.Kind == domain.ChangeMove {
		clients = []string{c.FromClientID, c.ToClientID}
	}
	for _, id := range clients {
		if _, ok := reg.Client(id); !ok {
			return &domain.ValidationError{Field: "clientID", Reason: fmt.Sprintf("unknown client %q", id)}
		}
	}
	if c.Kind != domain.ChangeRequire {
		if _, ok := reg.Worker(c.WorkerID); !ok {
			return &domain.ValidationError{Field: "workerID", Reason: fmt.Sprintf("unknown worker %q", c.WorkerID)}
		}
	}
	return nil
}
