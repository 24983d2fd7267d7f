package entity

import "errors"

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested entity was not found
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateArticle indicates a duplicate-key article write outside the
	// dedup path. This should not happen: the harvester pre-checks hashes and
	// inserts with conflict handling, so seeing this error means an invariant
	// is broken and the run must abort.
	ErrDuplicateArticle = errors.New("duplicate article outside dedup path")
)
