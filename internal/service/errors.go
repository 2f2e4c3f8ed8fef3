package service

import "errors"

// Common service errors. The API layer maps them to status codes.
var (
	// ErrNilDependency is returned by constructors given a nil collaborator.
	ErrNilDependency = errors.New("required dependency is nil")

	// ErrContentNotFound is returned when study material cannot be loaded.
	// API layer should map this to HTTP 404 Not Found.
	ErrContentNotFound = errors.New("content not found")

	// ErrProgressNotFound is returned when no completion was ever recorded
	// for a content.
	ErrProgressNotFound = errors.New("no progress recorded")

	// ErrNoContents is returned when a challenge request names no contents.
	ErrNoContents = errors.New("at least one content is required")

	// ErrUnexpectedPayload is returned by task handlers given a payload of
	// the wrong type.
	ErrUnexpectedPayload = errors.New("unexpected task payload")
)
