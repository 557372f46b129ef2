package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Update when no application has the given ID.
	// It usually means the caller holds a stale copy.
	ErrNotFound = errors.New("application not found")

	// ErrNotReady is returned by mutators called before Load completes.
	ErrNotReady = errors.New("store not loaded")

	// ErrClosed is returned by mutators called after Close.
	ErrClosed = errors.New("store closed")
)

// UniversityNotFoundError is returned when a faculty contact targets a
// university that has no application yet.
type UniversityNotFoundError struct {
	University string
}

func (e *UniversityNotFoundError) Error() string {
	return fmt.Sprintf("university %q not found: add an application for it first, or create one with the contact", e.University)
}
