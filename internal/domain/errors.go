package domain

import "errors"

var (
	// ErrInvalidArgument marks contract violations by the caller (non-positive
	// values, negative counts or bounds, malformed keys)
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound is returned when a persisted run does not exist
	ErrNotFound = errors.New("not found")
	// ErrLimitExceeded is returned when an enumeration exceeds a configured cap
	ErrLimitExceeded = errors.New("limit exceeded")
)
