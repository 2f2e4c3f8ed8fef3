package registry

import (
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Set hands out one Registry per directory and collection, so every caller
// in the process shares the same instance and its lock.
type Set struct {
	root   string
	logger *slog.Logger

	mu     sync.Mutex
	opened map[string]*Registry
}

// NewSet returns a Set rooted at root.
func NewSet(root string, logger *slog.Logger) *Set {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Set{root: root, logger: logger, opened: map[string]*Registry{}}
}

// Root returns the directory all registries live under.
func (s *Set) Root() string { return s.root }

// Open returns the registry for collection in the directory formed by
// joining subdirs under the root. Options apply only when the registry is
// first opened.
func (s *Set) Open(collection string, subdirs []string, opts ...Option) (*Registry, error) {
	dir := filepath.Join(append([]string{s.root}, subdirs...)...)
	key := dir + "|" + collection

	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.opened[key]; ok {
		return r, nil
	}
	r, err := Open(dir, collection, s.logger, opts...)
	if err != nil {
		return nil, err
	}
	s.opened[key] = r
	return r, nil
}

// ComboKey builds a stable directory name for a set of source content ids.
func ComboKey(ids []string) string {
	clean := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		clean = append(clean, strings.NewReplacer("/", "_", `\`, "_", "..", "_").Replace(id))
	}
	sort.Strings(clean)
	return strings.Join(clean, "+")
}
