package ads

import "errors"

// Sentinel errors surfaced to the HTTP layer.
var (
	// ErrNotFound marks a missing ad, category, or location. Also used
	// for resources owned by another user so existence does not leak.
	ErrNotFound = errors.New("ads: not found")
	// ErrInvalidState marks an operation rejected by the ad's current status.
	ErrInvalidState = errors.New("ads: invalid state")
	// ErrValidation marks rejected input.
	ErrValidation = errors.New("ads: validation failed")
)
