package service

import (
	"fmt"

	"github.com/phrazzld/tutorgen/internal/generation"
	"github.com/phrazzld/tutorgen/internal/parse"
	"github.com/phrazzld/tutorgen/internal/prompts"
	"github.com/phrazzld/tutorgen/internal/validate"
)

// Toolkit bundles the collaborators every generation service needs.
type Toolkit struct {
	Controller *generation.Controller
	Parser     *parse.Parser
	Validator  *validate.Validator
	Prompts    *prompts.Library
}

func (t Toolkit) check() error {
	switch {
	case t.Controller == nil:
		return fmt.Errorf("%w: controller", ErrNilDependency)
	case t.Parser == nil:
		return fmt.Errorf("%w: parser", ErrNilDependency)
	case t.Validator == nil:
		return fmt.Errorf("%w: validator", ErrNilDependency)
	case t.Prompts == nil:
		return fmt.Errorf("%w: prompts", ErrNilDependency)
	}
	return nil
}

// prompt loads a template, wrapping the error with the operation name.
func (t Toolkit) prompt(name string) (string, error) {
	p, err := t.Prompts.Get(name)
	if err != nil {
		return "", fmt.Errorf("failed to load %s prompt: %w", name, err)
	}
	return p, nil
}
