package domain

import "errors"

// Sentinel errors shared across layers. Adapters map these to transport codes;
// application code wraps them with context via fmt.Errorf("%w").
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("backing store unavailable")
)
