// Package apperr defines the sentinel errors shared by all domain services.
// Callers match them with errors.Is; the HTTP layer maps them to status codes
// in exactly one place.
package apperr

import "errors"

var (
	// ErrValidation marks logically invalid input (e.g. an empty brand,
	// or a reservation range with start >= end). Nothing is persisted.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a referenced id that does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks an optimistic-concurrency violation or a state
	// conflict (overlapping booking, car with active reservations).
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized marks a missing or invalid caller identity.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden marks a caller that is authenticated but lacks the role
	// or ownership the operation requires.
	ErrForbidden = errors.New("forbidden")
)
