// Package ollama implements generation.Generator against a local Ollama
// server's /api/generate endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/tutorgen/internal/config"
	"github.com/phrazzld/tutorgen/internal/generation"
	"github.com/phrazzld/tutorgen/internal/platform/transport"
)

// DefaultURL is used when the configuration leaves the server URL empty.
const DefaultURL = "http://localhost:11434"

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 512

type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Images  []string `json:"images,omitempty"`
	Options options  `json:"options"`
}

type options struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// Generator calls an Ollama model.
type Generator struct {
	baseURL     string
	model       string
	temperature float64
	client      *http.Client
	caller      *transport.Caller
	logger      *slog.Logger
}

// NewGenerator creates a Generator from the LLM configuration. A nil client
// uses http.DefaultClient; per-call timeouts come from the configuration.
func NewGenerator(cfg config.LLMConfig, client *http.Client, logger *slog.Logger) (*Generator, error) {
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	baseURL := strings.TrimRight(cfg.OllamaURL, "/")
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("component", "ollama_generator", "model", cfg.ModelName)

	return &Generator{
		baseURL:     baseURL,
		model:       cfg.ModelName,
		temperature: cfg.Temperature,
		client:      client,
		caller: transport.NewCaller(transport.Policy{
			MaxRetries:        cfg.MaxRetries,
			BaseDelay:         time.Duration(cfg.RetryDelaySeconds) * time.Second,
			RequestsPerMinute: cfg.RequestsPerMinute,
			Timeout:           time.Duration(cfg.TimeoutSeconds) * time.Second,
		}, logger),
		logger: logger,
	}, nil
}

// Generate implements generation.Generator.
func (g *Generator) Generate(ctx context.Context, req generation.Request) (string, error) {
	prompt, err := req.Render()
	if err != nil {
		return "", err
	}

	body := generateRequest{
		Model:   g.model,
		Prompt:  prompt,
		Stream:  false,
		Options: options{Temperature: g.temperature, NumPredict: req.MaxTokens},
	}
	for _, img := range req.Images {
		body.Images = append(body.Images, base64.StdEncoding.EncodeToString(img))
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	var text string
	err = g.caller.Do(ctx, req.MaxRetries, func(ctx context.Context) error {
		text, err = g.post(ctx, payload)
		return err
	})
	if err != nil {
		g.logger.ErrorContext(ctx, "Ollama call failed", "error", err)
		return "", err
	}
	return text, nil
}

func (g *Generator) post(ctx context.Context, payload []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", generation.ErrInvalidConfig, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", generation.ErrTransientFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		snippet := string(data)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", fmt.Errorf("%w: status %d: %s", generation.ErrTransientFailure, resp.StatusCode, snippet)
		}
		return "", fmt.Errorf("%w: status %d: %s", generation.ErrGenerationFailed, resp.StatusCode, snippet)
	}

	var out generateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("%w: %v", generation.ErrInvalidResponse, err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("%w: %s", generation.ErrGenerationFailed, out.Error)
	}
	text := strings.TrimSpace(out.Response)
	if text == "" {
		return "", fmt.Errorf("%w: empty response", generation.ErrInvalidResponse)
	}
	return text, nil
}

var _ generation.Generator = (*Generator)(nil)
