package domain

import "errors"

// ErrOutOfRange is returned when a catalog index is outside [0, Size()).
var ErrOutOfRange = errors.New("field index out of range")

// ErrInvariantViolation marks a cursor/catalog desynchronization.
// It is never retried: the interaction that hit it must be halted.
var ErrInvariantViolation = errors.New("dialogue invariant violated")

// ErrInvalidCatalog is returned when a catalog definition is empty or has duplicate names.
var ErrInvalidCatalog = errors.New("invalid field catalog")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrFormNotFound is returned when a form code has no metadata.
var ErrFormNotFound = errors.New("form not found")

// ErrSubmissionFailed is returned when the finished record could not be handed off.
// The session is left unchanged, so the last answer can be resent.
var ErrSubmissionFailed = errors.New("submission failed")
