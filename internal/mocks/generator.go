package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/tutorgen/internal/generation"
)

// MockGenerator implements generation.Generator for testing. Calls are
// answered by GenerateFn when set, otherwise from Responses in order; once
// Responses runs out the last one repeats. Err, when set, is returned
// instead of a response.
type MockGenerator struct {
	GenerateFn func(ctx context.Context, req generation.Request) (string, error)

	Responses []string
	Err       error

	// RenderPrompts makes every call render its request first, failing the
	// call the way a real client would on a broken template.
	RenderPrompts bool

	mu       sync.Mutex
	requests []generation.Request
}

// Generate implements generation.Generator.
func (m *MockGenerator) Generate(ctx context.Context, req generation.Request) (string, error) {
	if m.RenderPrompts {
		if _, err := req.Render(); err != nil {
			return "", err
		}
	}

	m.mu.Lock()
	n := len(m.requests)
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, req)
	}
	if m.Err != nil {
		return "", m.Err
	}
	switch {
	case len(m.Responses) == 0:
		return "", nil
	case n < len(m.Responses):
		return m.Responses[n], nil
	default:
		return m.Responses[len(m.Responses)-1], nil
	}
}

// CallCount returns the number of Generate calls.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of every request received.
func (m *MockGenerator) Requests() []generation.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]generation.Request(nil), m.requests...)
}

// Reset clears the recorded calls.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
}

// MockGeneratorThatFails creates a MockGenerator that simulates a generation failure
func MockGeneratorThatFails() *MockGenerator {
	return &MockGenerator{Err: generation.ErrGenerationFailed}
}

// MockGeneratorWithTransientFailure creates a MockGenerator that simulates a transient failure
func MockGeneratorWithTransientFailure() *MockGenerator {
	return &MockGenerator{Err: generation.ErrTransientFailure}
}

// MockGeneratorWithContentBlocked creates a MockGenerator that simulates content being blocked
func MockGeneratorWithContentBlocked() *MockGenerator {
	return &MockGenerator{Err: generation.ErrContentBlocked}
}

var _ generation.Generator = (*MockGenerator)(nil)
