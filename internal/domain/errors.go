package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSessionClosed   = errors.New("simulation session is no longer a draft")
	ErrSessionNotFound = errors.New("simulation session not found")
)

type DoubleBookingError struct {
	WorkerID         string
	Date             Date
	ExistingClientID string
	TargetClientID   string
}

func (e *DoubleBookingError) Error() string {
	return fmt.Sprintf("worker %s is already confirmed at client %s on %s, cannot confirm at client %s",
		e.WorkerID, e.ExistingClientID, e.Date, e.TargetClientID)
}

type NotFoundError struct {
	WorkerID string
	ClientID string
	Date     Date
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("worker %s has no assignment at client %s on %s", e.WorkerID, e.ClientID, e.Date)
}

type ConflictError struct {
	ExpectedVersion int64
	CurrentVersion  int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("schedule changed since version %d (now %d), reopen the session", e.ExpectedVersion, e.CurrentVersion)
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ErrorKind classifies err for API clients: conflict means reopen and retry, everything else
// except "internal" means the proposed change must be fixed.
func ErrorKind(err error) string {
	var (
		doubleBooking *DoubleBookingError
		notFound      *NotFoundError
		conflict      *ConflictError
		validation    *ValidationError
	)
	switch {
	case errors.As(err, &conflict):
		return "conflict"
	case errors.As(err, &doubleBooking):
		return "double_booking"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &validation):
		return "validation"
	case errors.Is(err, ErrSessionClosed):
		return "session_closed"
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	default:
		return "internal"
	}
}
