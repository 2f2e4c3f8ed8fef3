package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

var (
	// ErrItemNotFound is returned by Get for an id not in the index.
	ErrItemNotFound = errors.New("registry item not found")
	// ErrCorruptIndex is returned when the index file cannot be decoded or
	// fails schema validation.
	ErrCorruptIndex = errors.New("registry index is corrupt")
)

// MaxTitleRunes is the length at which index titles are cut.
const MaxTitleRunes = 100

// DefaultEmptyListing is returned by LoadPriorTitles for an empty registry.
const DefaultEmptyListing = "None (no items generated yet)"

const priorTitlesKey = "prior_titles"

// Item is a record that can be stored in a registry.
type Item interface {
	Kind() string
	Label() string
}

// Meta is optional metadata attached to every item of one Persist call.
type Meta struct {
	Difficulty        string
	Interdisciplinary bool
}

// Entry is one row of the index.
type Entry struct {
	UUID              uuid.UUID `json:"uuid"`
	Title             string    `json:"title"`
	Type              string    `json:"type"`
	File              string    `json:"file"`
	GeneratedAt       time.Time `json:"generated_at"`
	Sequence          int       `json:"sequence"`
	SourceContents    []string  `json:"source_contents"`
	Difficulty        string    `json:"difficulty,omitempty"`
	Interdisciplinary bool      `json:"interdisciplinary,omitempty"`
}

// IndexMetadata describes the collection as a whole.
type IndexMetadata struct {
	Collection  string    `json:"collection"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
	TotalItems  int       `json:"total_items"`
}

// Index is the on-disk index document.
type Index struct {
	Metadata IndexMetadata    `json:"metadata"`
	Items    map[string]Entry `json:"items"`
}

// Stored is an index entry together with the item file it points to.
type Stored struct {
	Entry
	Record json.RawMessage `json:"record"`
}

// Registry is one collection on disk: <dir>/<collection>_registry.json and
// item files under <dir>/<collection>/. Index updates are read-modify-write
// under the instance mutex; a single process is assumed to own a directory.
type Registry struct {
	dir        string
	collection string
	empty      string
	now        func() time.Time
	logger     *slog.Logger

	mu    sync.Mutex
	cache *cache.Cache
}

// Option configures a Registry.
type Option func(*Registry)

// WithEmptyListing sets the text LoadPriorTitles returns when there is
// nothing to list.
func WithEmptyListing(s string) Option {
	return func(r *Registry) {
		if s != "" {
			r.empty = s
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// Open returns the registry for collection under dir, creating the
// directories as needed.
func Open(dir, collection string, logger *slog.Logger, opts ...Option) (*Registry, error) {
	if collection == "" || strings.ContainsAny(collection, `/\`) {
		return nil, fmt.Errorf("invalid collection name %q", collection)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := &Registry{
		dir:        dir,
		collection: collection,
		empty:      DefaultEmptyListing,
		now:        time.Now,
		logger:     logger.With("component", "registry", "collection", collection),
		cache:      cache.New(10*time.Minute, 20*time.Minute),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := os.MkdirAll(r.itemDir(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create registry directory: %w", err)
	}
	return r, nil
}

// Collection returns the collection name.
func (r *Registry) Collection() string { return r.collection }

func (r *Registry) indexPath() string {
	return filepath.Join(r.dir, r.collection+"_registry.json")
}

func (r *Registry) itemDir() string {
	return filepath.Join(r.dir, r.collection)
}

// Persist writes one item file per item and adds them to the index. It
// returns the minted ids in item order. On failure no item files from the
// call are left behind and the index is unchanged.
func (r *Registry) Persist(ctx context.Context, items []Item, sources []string, meta Meta) ([]uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	if sources == nil {
		sources = []string{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx, err := r.readIndex()
	if err != nil {
		return nil, err
	}

	now := r.now().UTC()
	seq := 0
	for _, e := range idx.Items {
		if e.Sequence > seq {
			seq = e.Sequence
		}
	}

	ids := make([]uuid.UUID, 0, len(items))
	var written []string
	discard := func() {
		for _, path := range written {
			if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				r.logger.Warn("failed to remove orphaned item file", "path", path, "error", err)
			}
		}
	}
	for _, item := range items {
		id := uuid.New()
		seq++
		entry := Entry{
			UUID:              id,
			Title:             Truncate(item.Label(), MaxTitleRunes),
			Type:              item.Kind(),
			File:              filepath.ToSlash(filepath.Join(r.collection, id.String()+".json")),
			GeneratedAt:       now,
			Sequence:          seq,
			SourceContents:    sources,
			Difficulty:        meta.Difficulty,
			Interdisciplinary: meta.Interdisciplinary,
		}

		data, err := itemDocument(item, entry)
		if err != nil {
			discard()
			return nil, err
		}
		path := filepath.Join(r.dir, filepath.FromSlash(entry.File))
		if err := WriteFileAtomic(path, data); err != nil {
			discard()
			return nil, fmt.Errorf("failed to write item %s: %w", id, err)
		}
		written = append(written, path)

		idx.Items[id.String()] = entry
		ids = append(ids, id)
	}

	idx.Metadata.LastUpdated = now
	idx.Metadata.TotalItems = len(idx.Items)
	if err := r.writeIndex(idx); err != nil {
		discard()
		return nil, err
	}

	r.cache.Delete(priorTitlesKey)
	r.logger.Info("persisted items", "count", len(ids), "total_items", idx.Metadata.TotalItems)
	return ids, nil
}

// List returns every entry in generation order.
func (r *Registry) List(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	idx, err := r.readIndex()
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return ordered(idx), nil
}

// Get returns one entry and its item file.
func (r *Registry) Get(ctx context.Context, id uuid.UUID) (Stored, error) {
	if err := ctx.Err(); err != nil {
		return Stored{}, err
	}
	r.mu.Lock()
	idx, err := r.readIndex()
	r.mu.Unlock()
	if err != nil {
		return Stored{}, err
	}

	entry, ok := idx.Items[id.String()]
	if !ok {
		return Stored{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	data, err := os.ReadFile(filepath.Join(r.dir, filepath.FromSlash(entry.File)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Stored{}, fmt.Errorf("%w: item file for %s", ErrItemNotFound, id)
		}
		return Stored{}, fmt.Errorf("failed to read item %s: %w", id, err)
	}
	return Stored{Entry: entry, Record: data}, nil
}

// LoadPriorTitles lists previously generated items, one per line, as
// "- [DIFFICULTY] text" or "- text". The text is read from each item file so
// it is not truncated. Missing item files are skipped.
//
// The cache is read and filled under r.mu, which Persist holds while it
// invalidates.
func (r *Registry) LoadPriorTitles(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.cache.Get(priorTitlesKey); ok {
		return cached.(string), nil
	}

	idx, err := r.readIndex()
	if err != nil {
		return "", err
	}

	var lines []string
	for _, e := range ordered(idx) {
		text := r.itemText(e)
		if text == "" {
			continue
		}
		if e.Difficulty != "" {
			lines = append(lines, fmt.Sprintf("- [%s] %s", strings.ToUpper(e.Difficulty), text))
		} else {
			lines = append(lines, "- "+text)
		}
	}

	listing := r.empty
	if len(lines) > 0 {
		listing = strings.Join(lines, "\n")
	}
	r.cache.SetDefault(priorTitlesKey, listing)
	return listing, nil
}

// itemText returns the full text of an item, falling back to the index
// title when the file cannot be read.
func (r *Registry) itemText(e Entry) string {
	data, err := os.ReadFile(filepath.Join(r.dir, filepath.FromSlash(e.File)))
	if err != nil {
		r.logger.Warn("item file unreadable, skipping", "uuid", e.UUID, "error", err)
		return ""
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		r.logger.Warn("item file is not valid JSON, using index title", "uuid", e.UUID, "error", err)
		return e.Title
	}
	for _, key := range []string{"text", "title", "name"} {
		if s, ok := doc[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return e.Title
}

// readIndex loads the index, or returns an empty one when the file does not
// exist. Callers hold r.mu.
func (r *Registry) readIndex() (*Index, error) {
	data, err := os.ReadFile(r.indexPath())
	if errors.Is(err, fs.ErrNotExist) {
		now := r.now().UTC()
		return &Index{
			Metadata: IndexMetadata{Collection: r.collection, CreatedAt: now, LastUpdated: now},
			Items:    map[string]Entry{},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry index: %w", err)
	}

	if err := checkIndex(data); err != nil {
		return nil, err
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}
	if idx.Items == nil {
		idx.Items = map[string]Entry{}
	}
	return &idx, nil
}

func (r *Registry) writeIndex(idx *Index) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode registry index: %w", err)
	}
	if err := WriteFileAtomic(r.indexPath(), data); err != nil {
		return fmt.Errorf("failed to write registry index: %w", err)
	}
	return nil
}

func ordered(idx *Index) []Entry {
	out := make([]Entry, 0, len(idx.Items))
	for _, e := range idx.Items {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sequence != out[j].Sequence {
			return out[i].Sequence < out[j].Sequence
		}
		return out[i].GeneratedAt.Before(out[j].GeneratedAt)
	})
	return out
}

// itemDocument flattens the record's own JSON fields together with the
// registry fields into one object.
func itemDocument(item Item, e Entry) ([]byte, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("failed to encode item: %w", err)
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("item must encode as a JSON object: %w", err)
	}

	doc["uuid"] = e.UUID.String()
	doc["type"] = e.Type
	doc["generated_at"] = e.GeneratedAt.Format(time.RFC3339Nano)
	doc["source_contents"] = e.SourceContents
	if e.Difficulty != "" {
		doc["difficulty"] = e.Difficulty
	}
	if e.Interdisciplinary {
		doc["interdisciplinary"] = true
	}
	return json.MarshalIndent(doc, "", "  ")
}

// WriteFileAtomic writes to a temporary file in the target directory and
// renames it into place.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return err
	}
	return nil
}

// Truncate cuts s to max runes and appends "..." when it was longer.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
