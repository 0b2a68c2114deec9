package services

import "errors"

// Error taxonomy shared by every service. Controllers translate these to
// HTTP status codes; anything else is an internal error.
var (
	// ErrNotFound covers both missing records and records owned by a
	// different organization. Callers cannot tell the two apart.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyClosed is returned when checking out a check-in that
	// already has a check-out time.
	ErrAlreadyClosed = errors.New("check-in already closed")

	// ErrValidation marks malformed input to a mutating operation.
	ErrValidation = errors.New("validation failed")

	// ErrExternalService wraps billing processor or mail transport
	// failures that must be surfaced to the caller.
	ErrExternalService = errors.New("external service error")

	// ErrPlanLimit is returned when an operation would exceed the
	// organization's subscription limits.
	ErrPlanLimit = errors.New("subscription plan limit reached")
)
