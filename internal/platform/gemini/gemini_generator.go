package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/phrazzld/tutorgen/internal/config"
	"github.com/phrazzld/tutorgen/internal/generation"
	"github.com/phrazzld/tutorgen/internal/platform/transport"
)

// contentGenerator is the part of the genai client the generator uses.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Generator calls a Gemini model.
type Generator struct {
	models      contentGenerator
	model       string
	temperature float32
	caller      *transport.Caller
	logger      *slog.Logger
}

// NewGenerator creates a Generator from the LLM configuration.
//
// Parameters:
//   - ctx: Context for client initialization
//   - cfg: API key, model name, retry and rate settings
//   - logger: A structured logger; nil discards output
//
// Returns:
//   - A ready Generator, or an error wrapping generation.ErrInvalidConfig
func NewGenerator(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*Generator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}
	return newGenerator(client.Models, cfg, logger), nil
}

func newGenerator(models contentGenerator, cfg config.LLMConfig, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("component", "gemini_generator", "model", cfg.ModelName)
	return &Generator{
		models:      models,
		model:       cfg.ModelName,
		temperature: float32(cfg.Temperature),
		caller: transport.NewCaller(transport.Policy{
			MaxRetries:        cfg.MaxRetries,
			BaseDelay:         time.Duration(cfg.RetryDelaySeconds) * time.Second,
			RequestsPerMinute: cfg.RequestsPerMinute,
			Timeout:           time.Duration(cfg.TimeoutSeconds) * time.Second,
		}, logger),
		logger: logger,
	}
}

// Generate implements generation.Generator.
func (g *Generator) Generate(ctx context.Context, req generation.Request) (string, error) {
	prompt, err := req.Render()
	if err != nil {
		return "", err
	}

	contents := buildContents(prompt, req.Images)
	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr(g.temperature)}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	g.logger.DebugContext(ctx, "calling Gemini",
		"prompt_length", len(prompt),
		"images", len(req.Images),
		"max_tokens", req.MaxTokens)

	var text string
	err = g.caller.Do(ctx, req.MaxRetries, func(ctx context.Context) error {
		resp, err := g.models.GenerateContent(ctx, g.model, contents, cfg)
		if err != nil {
			return classify(err)
		}
		text, err = responseText(resp)
		return err
	})
	if err != nil {
		g.logger.ErrorContext(ctx, "Gemini call failed", "error", err)
		return "", err
	}

	g.logger.DebugContext(ctx, "Gemini call succeeded", "response_length", len(text))
	return text, nil
}

func buildContents(prompt string, images [][]byte) []*genai.Content {
	if len(images) == 0 {
		return genai.Text(prompt)
	}
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	for _, img := range images {
		parts = append(parts, genai.NewPartFromBytes(img, http.DetectContentType(img)))
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w: prompt blocked (%s)", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("%w: no candidates", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: response blocked by safety filters", generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content", generation.ErrInvalidResponse)
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty text", generation.ErrInvalidResponse)
	}
	return text, nil
}

// classify maps client errors onto generation errors. Rate limits, server
// errors and transport failures are transient.
func classify(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500 {
			return fmt.Errorf("%w: %d %s", generation.ErrTransientFailure, apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("%w: %d %s", generation.ErrGenerationFailed, apiErr.Code, apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return classify(*apiErrPtr)
	}
	return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
}

var _ generation.Generator = (*Generator)(nil)
