package payments

import "errors"

// Sentinel errors returned by the payments core. Handlers map these onto
// HTTP statuses; everything else is treated as an internal failure.
var (
	// ErrNotFound indicates an unknown id or transaction reference.
	ErrNotFound = errors.New("payments: not found")
	// ErrPermission indicates the caller does not own the resource.
	// Surfaced to clients as a 404 to avoid leaking existence.
	ErrPermission = errors.New("payments: permission denied")
	// ErrInvalidState indicates an operation invalid for the current status.
	ErrInvalidState = errors.New("payments: invalid state")
	// ErrValidation indicates malformed or out-of-range input.
	ErrValidation = errors.New("payments: validation failed")
)
