package invoke

import "errors"

var (
	// ErrServiceNotFound is delivered as the error of error.platform.<src>
	// when no Service is registered for src.
	ErrServiceNotFound = errors.New("invocation service not found")

	// ErrStopped is returned by Send after Stop.
	ErrStopped = errors.New("bridge stopped")

	// ErrNoPendingSlot is returned when settling a src that has no open slot.
	ErrNoPendingSlot = errors.New("no pending slot")

	// ErrAlreadySettled is returned when a Deferred is settled twice.
	ErrAlreadySettled = errors.New("deferred already settled")
)
