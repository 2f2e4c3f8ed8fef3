package domain

import "errors"

var (
	// ErrValidation marks input rejected before any model call. Callers wrap
	// it with the offending field.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyContent means a content record carried no text to work from.
	ErrEmptyContent = errors.New("empty content")

	// ErrInvalidDifficulty means a level other than easy, medium or hard.
	ErrInvalidDifficulty = errors.New("invalid difficulty")
)
