package domain

import "errors"

// Error taxonomy. Adapters wrap underlying failures with one of these so
// callers can branch with errors.Is.
var (
	// ErrInvalidInput means user text could not be resolved to a symbol.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDataUnavailable means the provider answered but had no usable data.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrProvider means the provider could not be reached or answered badly.
	ErrProvider = errors.New("provider error")
)
