package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/phrazzld/tutorgen/internal/domain"
	"github.com/phrazzld/tutorgen/internal/events"
	"github.com/phrazzld/tutorgen/internal/platform/logger"
	"github.com/phrazzld/tutorgen/internal/registry"
	"github.com/phrazzld/tutorgen/internal/task"
)

// TaskTypeProgression identifies queued follow-up question generation.
const TaskTypeProgression = "question_progression"

const progressFile = "progress.json"

// Progress tracks which question sets exist for one content.
type Progress struct {
	ContentID string `json:"content_id"`
	// Generated counts the sets generated per difficulty.
	Generated map[domain.Difficulty]int `json:"generated"`
	// Completed holds the last completion time per difficulty.
	Completed       map[domain.Difficulty]time.Time `json:"completed"`
	HardGenerations int                             `json:"hard_generations"`
	UpdatedAt       time.Time                       `json:"updated_at"`
}

// ProgressionResult describes what a completion triggered.
type ProgressionResult struct {
	ContentID string            `json:"content_id"`
	Completed domain.Difficulty `json:"completed"`
	Next      domain.Difficulty `json:"next"`
	Skipped   bool              `json:"skipped"`
	Set       *QuestionSet      `json:"set,omitempty"`
}

// ProgressionService generates the next question set when a student
// completes a content: easy leads to medium, medium to hard, and hard to a
// fresh hard set every time.
type ProgressionService struct {
	questions *QuestionService
	contents  ContentSource
	root      string
	now       func() time.Time
	logger    *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewProgressionService creates a ProgressionService keeping progress files
// under root.
func NewProgressionService(questions *QuestionService, contents ContentSource, root string, logger *slog.Logger) (*ProgressionService, error) {
	if questions == nil {
		return nil, fmt.Errorf("%w: question service", ErrNilDependency)
	}
	if contents == nil {
		return nil, fmt.Errorf("%w: content source", ErrNilDependency)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressionService{
		questions: questions,
		contents:  contents,
		root:      root,
		now:       time.Now,
		logger:    logger.With(slog.String("component", "progression_service")),
		locks:     make(map[string]*sync.Mutex),
	}, nil
}

// lock returns the mutex serializing work on one content.
func (s *ProgressionService) lock(contentID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[contentID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[contentID] = l
	}
	return l
}

// Handle implements task.Handler for TaskTypeProgression.
func (s *ProgressionService) Handle(ctx context.Context, t task.Task) (any, error) {
	switch p := t.Payload.(type) {
	case events.ContentCompleted:
		return s.Complete(ctx, p)
	case *events.ContentCompleted:
		if p == nil {
			return nil, fmt.Errorf("%w: nil completion", ErrUnexpectedPayload)
		}
		return s.Complete(ctx, *p)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnexpectedPayload, t.Payload)
	}
}

// Complete records the completion and generates the next set unless it
// already exists.
func (s *ProgressionService) Complete(ctx context.Context, c events.ContentCompleted) (*ProgressionResult, error) {
	completed, err := domain.ParseDifficulty(c.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	if strings.TrimSpace(c.ContentID) == "" {
		return nil, fmt.Errorf("%w: content id is required", domain.ErrValidation)
	}

	l := s.lock(c.ContentID)
	l.Lock()
	defer l.Unlock()

	log := logger.FromContextOrDefault(ctx, s.logger).With("content_id", c.ContentID)
	progress, err := s.load(c.ContentID)
	if errors.Is(err, ErrProgressNotFound) {
		progress, err = s.blank(c.ContentID), nil
	}
	if err != nil {
		return nil, err
	}
	progress.Completed[completed] = s.now().UTC()

	next := completed.Next()
	result := &ProgressionResult{ContentID: c.ContentID, Completed: completed, Next: next}

	if next != domain.DifficultyHard && progress.Generated[next] > 0 {
		log.Info("next difficulty already generated", "next", next)
		result.Skipped = true
		return result, s.save(progress)
	}

	content, err := s.contents.Content(ctx, c.ContentID)
	if err != nil {
		return nil, err
	}
	set, err := s.questions.Generate(ctx, QuestionRequest{Content: content, Difficulty: next})
	if err != nil {
		return nil, err
	}
	result.Set = set

	if len(set.Questions) > 0 {
		progress.Generated[next]++
		if next == domain.DifficultyHard {
			progress.HardGenerations++
		}
	}
	if err := s.save(progress); err != nil {
		return nil, err
	}
	log.Info("progression generated",
		"completed", completed,
		"next", next,
		"questions", len(set.Questions),
		"hard_generations", progress.HardGenerations)
	return result, nil
}

// Progress returns the stored progress for a content, or an error wrapping
// ErrProgressNotFound when none was recorded.
func (s *ProgressionService) Progress(contentID string) (*Progress, error) {
	l := s.lock(contentID)
	l.Lock()
	defer l.Unlock()
	return s.load(contentID)
}

func (s *ProgressionService) path(contentID string) string {
	return filepath.Join(s.root, registry.ComboKey([]string{contentID}), progressFile)
}

func (s *ProgressionService) blank(contentID string) *Progress {
	return &Progress{
		ContentID: contentID,
		Generated: map[domain.Difficulty]int{},
		Completed: map[domain.Difficulty]time.Time{},
	}
}

func (s *ProgressionService) load(contentID string) (*Progress, error) {
	data, err := os.ReadFile(s.path(contentID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrProgressNotFound, contentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read progress: %w", err)
	}
	p := s.blank(contentID)
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to decode progress for %s: %w", contentID, err)
	}
	if p.Generated == nil {
		p.Generated = map[domain.Difficulty]int{}
	}
	if p.Completed == nil {
		p.Completed = map[domain.Difficulty]time.Time{}
	}
	return p, nil
}

func (s *ProgressionService) save(p *Progress) error {
	p.UpdatedAt = s.now().UTC()
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}
	path := s.path(p.ContentID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create progress directory: %w", err)
	}
	if err := registry.WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to write progress: %w", err)
	}
	return nil
}

// DecodeContentCompleted turns a TypeContentCompleted event into a
// progression task payload.
func DecodeContentCompleted(event *events.Event) (any, map[string]any, error) {
	if event.Type != events.TypeContentCompleted {
		return nil, nil, fmt.Errorf("%w: unexpected event type %q", events.ErrInvalidPayload, event.Type)
	}
	var c events.ContentCompleted
	if err := event.UnmarshalPayload(&c); err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(c.ContentID) == "" {
		return nil, nil, fmt.Errorf("%w: content_id is required", events.ErrInvalidPayload)
	}
	if _, err := domain.ParseDifficulty(c.Difficulty); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", events.ErrInvalidPayload, err)
	}
	meta := map[string]any{
		"content_id": c.ContentID,
		"difficulty": c.Difficulty,
		"event_id":   event.ID.String(),
	}
	return c, meta, nil
}

var (
	_ task.Handler = (*ProgressionService)(nil)
	_ task.Decoder = DecodeContentCompleted
)
