// Package prompts holds the prompt templates sent to the model. Templates are
// embedded in the binary and can be overridden file by file from a
// directory.
package prompts

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Template names.
const (
	Questions         = "questions"
	Challenges        = "challenges"
	Report            = "report"
	AnswerEvaluation  = "answer_evaluation"
	ChallengeFeedback = "challenge_feedback"
	Summary           = "summary"
	Classification    = "classification"
	Evaluation        = "evaluation"
)

// ErrUnknownPrompt is returned for a template name with no file.
var ErrUnknownPrompt = errors.New("unknown prompt")

//go:embed templates/*.tmpl
var embedded embed.FS

// Library resolves template names to template sources.
type Library struct {
	override string
}

// New returns a Library. When dir is non-empty, a file <dir>/<name>.tmpl
// takes precedence over the embedded template of the same name.
func New(dir string) *Library {
	return &Library{override: dir}
}

// Get returns the template source for name.
func (l *Library) Get(name string) (string, error) {
	file := name + ".tmpl"
	if l != nil && l.override != "" {
		data, err := os.ReadFile(filepath.Join(l.override, file))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to read prompt %s: %w", name, err)
		}
	}

	data, err := embedded.ReadFile("templates/" + file)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownPrompt, name)
	}
	return string(data), nil
}

// MustGet is like Get but panics when the template is missing.
func (l *Library) MustGet(name string) string {
	s, err := l.Get(name)
	if err != nil {
		panic(err)
	}
	return s
}
