package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrCorrectionPending blocks checkout while a correction awaits acceptance.
	ErrCorrectionPending = errors.New("checkout correction pending")
)
