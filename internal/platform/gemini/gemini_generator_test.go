package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/phrazzld/tutorgen/internal/config"
	"github.com/phrazzld/tutorgen/internal/generation"
	"github.com/phrazzld/tutorgen/internal/platform/transport"
)

type call struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

// fakeModels returns scripted responses in order.
type fakeModels struct {
	responses []*genai.GenerateContentResponse
	errs      []error
	calls     []call
}

func (f *fakeModels) GenerateContent(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	cfg *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	i := len(f.calls)
	f.calls = append(f.calls, call{model: model, contents: contents, config: cfg})
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var resp *genai.GenerateContentResponse
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	return resp, err
}

func textResponse(text string, reason genai.FinishReason) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Parts: []*genai.Part{{Text: text}}},
			FinishReason: reason,
		}},
	}
}

func testConfig() config.LLMConfig {
	return config.LLMConfig{
		Provider:          "gemini",
		GeminiAPIKey:      "test-key",
		ModelName:         "gemini-test",
		MaxRetries:        2,
		RetryDelaySeconds: 0,
		Temperature:       0.5,
		TimeoutSeconds:    5,
	}
}

func TestGenerateRendersPromptAndReturnsText(t *testing.T) {
	t.Parallel()
	models := &fakeModels{responses: []*genai.GenerateContentResponse{
		textResponse("  <summary>ok</summary>  ", genai.FinishReasonStop),
	}}
	g := newGenerator(models, testConfig(), nil)

	out, err := g.Generate(context.Background(), generation.Request{
		Prompt:    "Summarize {{.content}}",
		Variables: map[string]any{"content": "cells"},
		MaxTokens: 1000,
	})
	require.NoError(t, err)
	assert.Equal(t, "<summary>ok</summary>", out)

	require.Len(t, models.calls, 1)
	c := models.calls[0]
	assert.Equal(t, "gemini-test", c.model)
	require.Len(t, c.contents, 1)
	assert.Equal(t, "Summarize cells", c.contents[0].Parts[0].Text)
	assert.Equal(t, int32(1000), c.config.MaxOutputTokens)
	require.NotNil(t, c.config.Temperature)
	assert.InDelta(t, 0.5, *c.config.Temperature, 0.0001)
}

func TestGenerateAttachesImages(t *testing.T) {
	t.Parallel()
	models := &fakeModels{responses: []*genai.GenerateContentResponse{textResponse("seen", genai.FinishReasonStop)}}
	g := newGenerator(models, testConfig(), nil)

	png := []byte("\x89PNG\r\n\x1a\n0000")
	_, err := g.Generate(context.Background(), generation.Request{Prompt: "look", Images: [][]byte{png}})
	require.NoError(t, err)

	parts := models.calls[0].contents[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, "look", parts[0].Text)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/png", parts[1].InlineData.MIMEType)
}

func TestGenerateRetriesTransientErrors(t *testing.T) {
	t.Parallel()
	models := &fakeModels{
		errs: []error{
			genai.APIError{Code: 503, Message: "unavailable"},
			genai.APIError{Code: 429, Message: "slow down"},
		},
		responses: []*genai.GenerateContentResponse{nil, nil, textResponse("third time", genai.FinishReasonStop)},
	}
	g := newGenerator(models, testConfig(), nil)
	g.caller = transport.NewCaller(transport.Policy{MaxRetries: 2, BaseDelay: time.Millisecond, Timeout: time.Second}, nil)

	out, err := g.Generate(context.Background(), generation.Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "third time", out)
	assert.Len(t, models.calls, 3)
}

func TestGeneratePermanentFailures(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		resp   *genai.GenerateContentResponse
		err    error
		target error
	}{
		{"bad request", nil, genai.APIError{Code: 400, Message: "bad"}, generation.ErrGenerationFailed},
		{"safety", textResponse("", genai.FinishReasonSafety), nil, generation.ErrContentBlocked},
		{"no candidates", &genai.GenerateContentResponse{}, nil, generation.ErrInvalidResponse},
		{"empty text", textResponse("   ", genai.FinishReasonStop), nil, generation.ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			models := &fakeModels{
				responses: []*genai.GenerateContentResponse{tt.resp},
				errs:      []error{tt.err},
			}
			g := newGenerator(models, testConfig(), nil)
			_, err := g.Generate(context.Background(), generation.Request{Prompt: "p"})
			assert.ErrorIs(t, err, tt.target)
			assert.Len(t, models.calls, 1, "permanent errors are not retried")
		})
	}
}

func TestGenerateInvalidPrompt(t *testing.T) {
	t.Parallel()
	models := &fakeModels{}
	g := newGenerator(models, testConfig(), nil)
	_, err := g.Generate(context.Background(), generation.Request{Prompt: "{{.missing}}"})
	assert.ErrorIs(t, err, generation.ErrInvalidPrompt)
	assert.Empty(t, models.calls)
}

func TestNewGeneratorValidatesConfig(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.GeminiAPIKey = ""
	_, err := NewGenerator(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	cfg = testConfig()
	cfg.ModelName = ""
	_, err = NewGenerator(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}

func TestClassify(t *testing.T) {
	t.Parallel()
	assert.ErrorIs(t, classify(errors.New("connection reset")), generation.ErrTransientFailure)
	assert.ErrorIs(t, classify(&genai.APIError{Code: 500}), generation.ErrTransientFailure)
	assert.ErrorIs(t, classify(genai.APIError{Code: 403}), generation.ErrGenerationFailed)
	assert.ErrorIs(t, classify(context.Canceled), context.Canceled)
}
