package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/phrazzld/tutorgen/internal/domain"
	"github.com/phrazzld/tutorgen/internal/generation"
	"github.com/phrazzld/tutorgen/internal/platform/logger"
	"github.com/phrazzld/tutorgen/internal/prompts"
	"github.com/phrazzld/tutorgen/internal/quota"
	"github.com/phrazzld/tutorgen/internal/registry"
)

// ChallengesCollection names the challenge registry of a content combination.
const ChallengesCollection = "challenges"

const (
	challengesMaxTokens = 4096
	summaryMaxTokens    = 1000
	summaryAttempts     = 2
	// summaryConcurrency bounds parallel summarization calls.
	summaryConcurrency = 4
)

// ChallengeRequest asks for a challenge set drawing on one or more contents.
type ChallengeRequest struct {
	Contents []domain.Content `json:"contents" validate:"required,min=1,dive"`
}

// ChallengeSet is the outcome of a challenge session.
type ChallengeSet struct {
	SourceContents    []string            `json:"source_contents"`
	Interdisciplinary bool                `json:"interdisciplinary"`
	State             generation.State    `json:"state"`
	Attempts          int                 `json:"attempts"`
	Missing           string              `json:"missing,omitempty"`
	Challenges        []*domain.Challenge `json:"challenges"`
	IDs               []uuid.UUID         `json:"registry_ids,omitempty"`
}

// ChallengeService generates challenge sets. With several contents each one
// is summarized first and the challenges are interdisciplinary.
type ChallengeService struct {
	tk         Toolkit
	registries *registry.Set
	logger     *slog.Logger
}

// NewChallengeService creates a ChallengeService.
func NewChallengeService(tk Toolkit, registries *registry.Set, logger *slog.Logger) (*ChallengeService, error) {
	if err := tk.check(); err != nil {
		return nil, err
	}
	if registries == nil {
		return nil, fmt.Errorf("%w: registries", ErrNilDependency)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChallengeService{
		tk:         tk,
		registries: registries,
		logger:     logger.With(slog.String("component", "challenge_service")),
	}, nil
}

// Generate runs a challenge session over the request's contents.
func (s *ChallengeService) Generate(ctx context.Context, req ChallengeRequest) (*ChallengeSet, error) {
	if len(req.Contents) == 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, ErrNoContents)
	}
	ids := make([]string, len(req.Contents))
	for i, c := range req.Contents {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		ids[i] = c.ID
	}
	interdisciplinary := len(req.Contents) > 1
	key := registry.ComboKey(ids)
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		"combination", key,
		"interdisciplinary", interdisciplinary)

	prompt, err := s.tk.prompt(prompts.Challenges)
	if err != nil {
		return nil, err
	}
	reg, err := s.registries.Open(ChallengesCollection, []string{key},
		registry.WithEmptyListing("None (first time generating challenges for this content combination)"))
	if err != nil {
		return nil, fmt.Errorf("failed to open challenge registry: %w", err)
	}
	prior, err := reg.LoadPriorTitles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous challenges: %w", err)
	}

	material := req.Contents[0].Text
	if interdisciplinary {
		material, err = s.combine(ctx, req.Contents)
		if err != nil {
			return nil, err
		}
	}

	outcome, err := generation.Run(ctx, s.tk.Controller, generation.Plan[*domain.Challenge]{
		Name:   "challenges:" + key,
		Quota:  quota.Challenges,
		Prompt: prompt,
		Variables: map[string]any{
			"content":           material,
			"interdisciplinary": interdisciplinary,
		},
		PriorItems: prior,
		MaxTokens:  challengesMaxTokens,
		Parse:      s.tk.Parser.Challenges,
		Validate:   s.tk.Validator.Challenge,
	})
	if err != nil {
		return nil, fmt.Errorf("challenge generation failed: %w", err)
	}

	set := &ChallengeSet{
		SourceContents:    ids,
		Interdisciplinary: interdisciplinary,
		State:             outcome.State,
		Attempts:          outcome.Attempts,
		Challenges:        outcome.Items,
	}
	if !outcome.Deficit.Empty() {
		set.Missing = outcome.Deficit.String()
	}
	if len(outcome.Items) == 0 {
		log.Warn("challenge session produced nothing", "attempts", outcome.Attempts)
		return set, nil
	}

	items := make([]registry.Item, len(outcome.Items))
	for i, c := range outcome.Items {
		items[i] = c
	}
	set.IDs, err = reg.Persist(ctx, items, ids, registry.Meta{Interdisciplinary: interdisciplinary})
	if err != nil {
		return nil, fmt.Errorf("failed to store challenges: %w", err)
	}

	log.Info("challenge set generated",
		"state", outcome.State,
		"count", len(outcome.Items),
		"attempts", outcome.Attempts)
	return set, nil
}

// combine summarizes every content concurrently and joins the results in
// request order. A content whose summary fails is included in full.
func (s *ChallengeService) combine(ctx context.Context, contents []domain.Content) (string, error) {
	prompt, err := s.tk.prompt(prompts.Summary)
	if err != nil {
		return "", err
	}

	parts := make([]string, len(contents))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(summaryConcurrency)
	for i, c := range contents {
		g.Go(func() error {
			name := strings.ToUpper(c.DisplayName())
			summary, err := generation.Once(gctx, s.tk.Controller, generation.OncePlan[string]{
				Name:   "summary:" + c.ID,
				Prompt: prompt,
				Variables: map[string]any{
					"content_name": c.DisplayName(),
					"content":      c.Text,
				},
				MaxTokens: summaryMaxTokens,
				Attempts:  summaryAttempts,
				Parse:     s.tk.Parser.Summary,
			})
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				s.logger.Warn("summarization failed, using full content",
					"content_id", c.ID,
					"error", err)
				parts[i] = fmt.Sprintf("=== %s CONTENT ===\n%s", name, strings.TrimSpace(c.Text))
				return nil
			}
			parts[i] = fmt.Sprintf("=== %s SUMMARY ===\n%s", name, summary)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("content summarization interrupted: %w", err)
	}
	return strings.Join(parts, "\n\n"), nil
}
