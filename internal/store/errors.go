package store

import "errors"

var (
	// ErrNotFound means no archived row matched the lookup.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate means a row with the same key was already archived and the
	// write could not be merged.
	ErrDuplicate = errors.New("record already archived")

	// ErrInvalidEntity means the record was refused, either by the archive
	// (non-terminal status) or by a table constraint.
	ErrInvalidEntity = errors.New("invalid record")
)
