// Package auth issues and validates the HMAC-signed bearer tokens that
// protect the HTTP API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/tutorgen/internal/platform/logger"
)

// MinSecretLength is the shortest accepted signing secret.
const MinSecretLength = 32

const clockSkew = 2 * time.Minute

// Claims identifies the caller of an authenticated request.
type Claims struct {
	Subject   string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Tokens signs and verifies HS256 tokens.
type Tokens struct {
	signingKey []byte
	lifetime   time.Duration
	now        func() time.Time
}

// Option configures Tokens.
type Option func(*Tokens)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tokens) {
		t.now = now
	}
}

// NewTokens creates Tokens signing with secret. Issued tokens expire after
// lifetime.
func NewTokens(secret string, lifetime time.Duration, opts ...Option) (*Tokens, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: need at least %d characters", ErrWeakSecret, MinSecretLength)
	}
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	t := &Tokens{signingKey: []byte(secret), lifetime: lifetime, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Issue returns a signed token for subject.
func (t *Tokens) Issue(ctx context.Context, subject string) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", fmt.Errorf("%w: subject is required", ErrInvalidToken)
	}
	now := t.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.lifetime)),
		ID:        uuid.New().String(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.signingKey)
	if err != nil {
		logger.FromContext(ctx).Error("failed to sign token",
			"error", err,
			"subject", subject,
			"signing_method", jwt.SigningMethodHS256.Name)
		return "", fmt.Errorf("failed to sign token with HMAC-SHA256: %w", err)
	}
	return signed, nil
}

// Validate parses a token and returns its claims.
func (t *Tokens) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)
	now := t.now()

	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return t.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("token validation failed: token expired")
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			log.Debug("token validation failed: token not yet valid")
			return nil, ErrTokenNotYetValid
		default:
			log.Debug("token validation failed",
				"error", err,
				"error_type", fmt.Sprintf("%T", err))
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		log.Debug("token validation failed: invalid claims")
		return nil, ErrInvalidToken
	}

	out := &Claims{Subject: claims.Subject, ID: claims.ID}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
