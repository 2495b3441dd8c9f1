// Package version implements the in-memory document version store
package version

import "errors"

var (
	// ErrInvalidInput indicates a caller violated a createVersion precondition
	ErrInvalidInput = errors.New("version: invalid input")

	// ErrNotFound indicates an unknown version id
	ErrNotFound = errors.New("version: not found")

	// ErrClosed indicates an operation on a closed store
	ErrClosed = errors.New("version: store closed")
)
