package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrInvalidID = errors.New("invalid reservation ID format")

	ErrWaitlistEntryNotFound = errors.New("waitlist entry not found")

	// ErrNotConfirmed means a conditional cancel matched no confirmed
	// reservation: the document is missing or its status already
	// changed, typically under a concurrent cancel of the same id.
	ErrNotConfirmed = errors.New("reservation is not confirmed")

	// ErrLockHeld means another request currently holds the advisory
	// lock for the same court.
	ErrLockHeld = errors.New("slot lock is held by another request")
)
