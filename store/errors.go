package store

import "errors"

var (
	// ErrNotFound is returned by Get when no row exists at the key.
	ErrNotFound = errors.New("store: row not found")

	// ErrBatchTooLarge is returned by BatchPut when the row count
	// exceeds MaxBatchItems; callers must chunk.
	ErrBatchTooLarge = errors.New("store: batch exceeds item limit")

	// ErrUnknownIndex is returned by QueryIndex for an index name the
	// store was not configured with.
	ErrUnknownIndex = errors.New("store: unknown index")
)
