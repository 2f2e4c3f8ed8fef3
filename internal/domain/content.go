package domain

import (
	"fmt"
	"strings"
)

// Content is a piece of study material that generation works from.
type Content struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name,omitempty"`
	Text string `json:"text" validate:"required"`
}

// DisplayName returns Name, falling back to ID.
func (c Content) DisplayName() string {
	if strings.TrimSpace(c.Name) != "" {
		return c.Name
	}
	return c.ID
}

// Validate checks that the content can be used as a generation source.
func (c Content) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: content id is required", ErrValidation)
	}
	if strings.TrimSpace(c.Text) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyContent, c.ID)
	}
	return nil
}
