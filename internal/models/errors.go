package models

import "errors"

var (
	// ErrNotFound is returned for an unknown exercise, protocol or session id.
	ErrNotFound = errors.New("not found")
	// ErrNoCandidates is returned when a filter leaves nothing to pick from.
	ErrNoCandidates = errors.New("no candidates")
	// ErrInvalidInput is returned for values outside their enumerated domain.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoProtocol is returned when an exercise has no protocol after every fallback.
	ErrNoProtocol = errors.New("no protocol available")
	// ErrAlreadyCompleted is returned when completing or editing a completed session.
	ErrAlreadyCompleted = errors.New("session already completed")
)
