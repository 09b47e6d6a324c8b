package repository

import "errors"

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when an insert or update violates a
	// uniqueness constraint.
	ErrDuplicateKey = errors.New("duplicate key")
)
