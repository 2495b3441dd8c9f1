// Package journal implements best-effort append-only persistence for
// versions and branches
package journal

import "errors"

var (
	// ErrCorrupted indicates a corrupted record (CRC mismatch)
	ErrCorrupted = errors.New("journal: corrupted record")

	// ErrTruncated indicates a truncated record
	ErrTruncated = errors.New("journal: truncated record")

	// ErrInvalidRecord indicates an invalid record format
	ErrInvalidRecord = errors.New("journal: invalid record")

	// ErrClosed indicates an operation on a closed journal
	ErrClosed = errors.New("journal: closed")

	// ErrNotFound indicates journal files don't exist
	ErrNotFound = errors.New("journal: not found")
)
