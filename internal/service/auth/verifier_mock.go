package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MockTokenVerifier is a mock implementation of the TokenVerifier interface
// for testing. This is the single canonical mock to be used in all tests.
type MockTokenVerifier struct {
	// VerifyTokenFunc overrides VerifyToken when set.
	VerifyTokenFunc func(ctx context.Context, tokenString string) (*Claims, error)

	// Fixed fields for simple cases
	Claims            *Claims // Default claims to return
	VerificationError error   // Default error for token verification
}

// NewMockTokenVerifier creates a mock verifier that accepts any token and
// returns claims for a fresh principal.
func NewMockTokenVerifier() *MockTokenVerifier {
	now := time.Now()

	return &MockTokenVerifier{
		Claims: &Claims{
			SubjectID: uuid.New(),
			Name:      "mock-caller",
			Scopes:    []string{"api:read", "api:write"},
			IssuedAt:  now,
			ExpiresAt: now.Add(1 * time.Hour),
			ID:        uuid.New().String(),
		},
	}
}

// VerifyToken implements the TokenVerifier.VerifyToken method.
func (m *MockTokenVerifier) VerifyToken(ctx context.Context, tokenString string) (*Claims, error) {
	if m.VerifyTokenFunc != nil {
		return m.VerifyTokenFunc(ctx, tokenString)
	}
	if m.VerificationError != nil {
		return nil, m.VerificationError
	}
	return m.Claims, nil
}

// WithVerifyTokenFunc sets a custom VerifyToken function and returns the mock.
func (m *MockTokenVerifier) WithVerifyTokenFunc(
	fn func(ctx context.Context, tokenString string) (*Claims, error),
) *MockTokenVerifier {
	m.VerifyTokenFunc = fn
	return m
}

// WithClaims sets custom claims and returns the mock.
func (m *MockTokenVerifier) WithClaims(claims *Claims) *MockTokenVerifier {
	m.Claims = claims
	return m
}

// WithVerificationError sets a custom verification error and returns the mock.
func (m *MockTokenVerifier) WithVerificationError(err error) *MockTokenVerifier {
	m.VerificationError = err
	return m
}
