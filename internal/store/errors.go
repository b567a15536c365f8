package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an id does not name an existing row.
	ErrNotFound = errors.New("not found")

	// ErrIndexDrift is returned by VerifyIndex when the full-text index no
	// longer matches the clips table. Reindex recovers from it.
	ErrIndexDrift = errors.New("search index out of sync")

	// ErrInvalidInput is returned for arguments that can never succeed.
	ErrInvalidInput = errors.New("invalid input")
)

// NotFound builds an ErrNotFound error naming the missing row.
func NotFound(kind string, id any) error {
	return fmt.Errorf("%s not found: %v: %w", kind, id, ErrNotFound)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
