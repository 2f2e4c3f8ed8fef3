package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/phrazzld/tutorgen/internal/domain"
)

// ContentSource loads study material by id.
type ContentSource interface {
	Content(ctx context.Context, id string) (domain.Content, error)
}

// contentExtensions are tried in order after the bare id.
var contentExtensions = []string{".md", ".txt"}

// DirContentSource reads study material from files in one directory.
type DirContentSource struct {
	dir string
}

// NewDirContentSource returns a source reading <dir>/<id>.md, <id>.txt or
// <id>.
func NewDirContentSource(dir string) *DirContentSource {
	return &DirContentSource{dir: dir}
}

// Content implements ContentSource.
func (s *DirContentSource) Content(ctx context.Context, id string) (domain.Content, error) {
	if err := ctx.Err(); err != nil {
		return domain.Content{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return domain.Content{}, fmt.Errorf("%w: invalid content id %q", domain.ErrValidation, id)
	}

	for _, name := range append(prefixed(id, contentExtensions), id) {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return domain.Content{}, fmt.Errorf("failed to read content %s: %w", id, err)
		}
		c := domain.Content{ID: id, Name: id, Text: string(data)}
		if err := c.Validate(); err != nil {
			return domain.Content{}, err
		}
		return c, nil
	}
	return domain.Content{}, fmt.Errorf("%w: %s", ErrContentNotFound, id)
}

func prefixed(id string, exts []string) []string {
	out := make([]string, len(exts))
	for i, ext := range exts {
		out[i] = id + ext
	}
	return out
}
