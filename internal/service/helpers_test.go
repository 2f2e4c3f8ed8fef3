package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tutorgen/internal/generation"
	"github.com/phrazzld/tutorgen/internal/parse"
	"github.com/phrazzld/tutorgen/internal/prompts"
	"github.com/phrazzld/tutorgen/internal/validate"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeGenerator renders every request, so a prompt variable the service
// forgot fails the call, then answers with respond.
type fakeGenerator struct {
	mu       sync.Mutex
	respond  func(n int, req generation.Request) (string, error)
	requests []generation.Request
}

func (g *fakeGenerator) Generate(_ context.Context, req generation.Request) (string, error) {
	if _, err := req.Render(); err != nil {
		return "", err
	}
	g.mu.Lock()
	n := len(g.requests)
	g.requests = append(g.requests, req)
	g.mu.Unlock()
	return g.respond(n, req)
}

func (g *fakeGenerator) calls() []generation.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]generation.Request(nil), g.requests...)
}

func respondWith(responses ...string) func(int, generation.Request) (string, error) {
	return func(n int, _ generation.Request) (string, error) {
		if n < len(responses) {
			return responses[n], nil
		}
		return responses[len(responses)-1], nil
	}
}

func newToolkit(t *testing.T, gen generation.Generator) Toolkit {
	t.Helper()
	c, err := generation.NewController(gen, discardLogger(), generation.WithRetryDelay(0))
	require.NoError(t, err)
	return Toolkit{
		Controller: c,
		Parser:     parse.New(nil, discardLogger()),
		Validator:  validate.New(),
		Prompts:    prompts.New(""),
	}
}

// fullQuestionSet returns a response meeting the question quota. prefix
// keeps question texts distinct between calls.
func fullQuestionSet(prefix string) string {
	var b strings.Builder
	b.WriteString("<questions>\n<multiple_choice>\n")
	for i := 1; i <= 2; i++ {
		fmt.Fprintf(&b, "<question><text>%s choice %d</text><options><option_a>one</option_a><option_b>two</option_b></options><answer>a</answer></question>\n", prefix, i)
	}
	b.WriteString("</multiple_choice>\n<true_false>\n")
	fmt.Fprintf(&b, "<question><text>%s statement</text><answer>true</answer></question>\n", prefix)
	b.WriteString("</true_false>\n<fill_blank>\n")
	for i := 1; i <= 2; i++ {
		fmt.Fprintf(&b, "<question><text>%s blank %d ____</text><answer>word</answer></question>\n", prefix, i)
	}
	b.WriteString("</fill_blank>\n<short_answer>\n")
	for i := 1; i <= 2; i++ {
		fmt.Fprintf(&b, "<question><text>%s explain %d</text><answer>because</answer></question>\n", prefix, i)
	}
	b.WriteString("</short_answer>\n<free_recall>\n")
	fmt.Fprintf(&b, "<question><text>%s recall</text><answer>everything</answer></question>\n", prefix)
	b.WriteString("</free_recall>\n</questions>")
	return b.String()
}

func challengeSet(n int) string {
	var b strings.Builder
	b.WriteString("<challenges>\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "<challenge><title>Challenge %d</title><description>Build thing %d</description><learning_goals>Apply ideas</learning_goals><deliverables>A report</deliverables></challenge>\n", i, i)
	}
	b.WriteString("</challenges>")
	return b.String()
}

// recordingQueue captures enqueued tasks.
type recordingQueue struct {
	mu    sync.Mutex
	tasks []queuedTask
	err   error
}

type queuedTask struct {
	taskType string
	payload  any
	meta     map[string]any
}

func (q *recordingQueue) Enqueue(taskType string, payload any, meta map[string]any) (uuid.UUID, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return uuid.Nil, q.err
	}
	q.tasks = append(q.tasks, queuedTask{taskType: taskType, payload: payload, meta: meta})
	return uuid.New(), nil
}
