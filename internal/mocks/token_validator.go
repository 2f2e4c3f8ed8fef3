package mocks

import (
	"context"

	"github.com/phrazzld/tutorgen/internal/auth"
)

// MockTokenValidator validates bearer tokens for middleware tests.
type MockTokenValidator struct {
	// ValidateFn allows test cases to mock the Validate behavior
	ValidateFn func(ctx context.Context, token string) (*auth.Claims, error)

	// Default values used when ValidateFn isn't set
	Claims *auth.Claims
	Err    error
}

// Validate returns ValidateFn's result or the default values.
func (m *MockTokenValidator) Validate(ctx context.Context, token string) (*auth.Claims, error) {
	if m.ValidateFn != nil {
		return m.ValidateFn(ctx, token)
	}
	return m.Claims, m.Err
}
