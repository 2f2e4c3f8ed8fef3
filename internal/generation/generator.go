package generation

import (
	"context"
	"fmt"
	"strings"
	"text/template"
)

// Generator defines the boundary between the application core and an
// external text model.
type Generator interface {
	// Generate renders req and returns the model's raw text response.
	//
	// Parameters:
	//   - ctx: Context for the operation, which can be used for cancellation
	//   - req: The prompt template, its variables and call limits
	//
	// Returns:
	//   - The raw text produced by the model
	//   - An error if the model could not be reached or refused the request
	//     after the generator's own retries (see errors.go for specific types)
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Request is a single model invocation.
type Request struct {
	// Prompt is a text/template source.
	Prompt string
	// Variables are the template data.
	Variables map[string]any
	// MaxTokens caps the response length. Zero leaves the model default.
	MaxTokens int
	// MaxRetries bounds the generator's internal transport retries. Zero
	// uses the generator's configured default.
	MaxRetries int
	// Images are attached to multimodal requests.
	Images [][]byte
}

// Render executes the prompt template with Variables. Referencing a
// variable that was not supplied is an error.
func (r Request) Render() (string, error) {
	if strings.TrimSpace(r.Prompt) == "" {
		return "", fmt.Errorf("%w: empty template", ErrInvalidPrompt)
	}
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(r.Prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPrompt, err)
	}

	vars := r.Variables
	if vars == nil {
		vars = map[string]any{}
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, vars); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPrompt, err)
	}
	return b.String(), nil
}
