package errors

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Session error conditions. Callers classify with errors.Is; wrapped causes
// stay visible in the message for logging.
var (
	// ErrNotFound: requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidArgument: caller passed bad input. Indicates a caller bug,
	// not a runtime condition to recover from.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStaleCandidate: recordDecision called with a candidate id that is
	// not at the current cursor (duplicate or late gesture callback).
	ErrStaleCandidate = errors.New("candidate is not at the current cursor")

	// ErrInvalidState: operation not valid in the session's current state.
	ErrInvalidState = errors.New("operation not valid in current state")

	// ErrSessionClosed: session state was discarded (sign-out or Close).
	ErrSessionClosed = errors.New("session closed")

	// ErrEmptyMessage: outgoing message content is empty or whitespace-only;
	// rejected locally, no store call is made.
	ErrEmptyMessage = errors.New("message content is empty")

	// ErrSyncFailed: a persistence call failed after local state already
	// advanced. The session remains usable; the failure is surfaced for
	// retry/telemetry only.
	ErrSyncFailed = errors.New("sync failed")

	// ErrSubscriptionClosed: the realtime delivery channel dropped. Distinct
	// from an idle channel so the caller can decide to re-subscribe.
	ErrSubscriptionClosed = errors.New("subscription closed")
)

// Map converts store/infra errors into the package's conditions.
// Keeps the session and chat layers clean by centralizing classification.
func Map(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	default:
		return err
	}
}

// InvalidArgument wraps ErrInvalidArgument with a description of the bad input.
func InvalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

// SyncFailed wraps a persistence error as a non-fatal sync condition.
func SyncFailed(err error) error {
	return fmt.Errorf("%w: %v", ErrSyncFailed, err)
}
