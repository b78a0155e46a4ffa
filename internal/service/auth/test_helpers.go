package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gridstonehq/gridstone-api/internal/config"
)

// DefaultAuthConfig returns a standard configuration for token verification
// suitable for testing. This is the single source of truth for auth test config.
func DefaultAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            "test-jwt-secret-that-is-32-chars-long", // At least 32 chars
		TokenLifetimeMinutes: 60,
		ClockSkewSeconds:     120,
	}
}

// NewTestTokenService creates a token service with default configuration for
// testing. This is the recommended way to create a token service for tests.
func NewTestTokenService() (*HMACTokenService, error) {
	return NewHMACTokenService(DefaultAuthConfig())
}

// MustCreateTestTokenService creates a test token service and panics if it
// fails. Useful for test setup where error handling would be verbose.
func MustCreateTestTokenService() *HMACTokenService {
	service, err := NewTestTokenService()
	if err != nil {
		panic(fmt.Sprintf("failed to create test token service: %v", err))
	}
	return service
}

// IssueTokenForTesting creates an access token for the specified subject ID.
// This is a utility function for tests that need tokens without having to
// instantiate a token service.
func IssueTokenForTesting(subjectID uuid.UUID) (string, error) {
	svc, err := NewTestTokenService()
	if err != nil {
		return "", fmt.Errorf("failed to create token service: %w", err)
	}
	return svc.IssueToken(context.Background(), subjectID, "test-caller", []string{"api:read", "api:write"})
}

// IssueExpiredTokenForTesting creates an access token that expired well beyond
// the default clock skew, for exercising rejection paths.
func IssueExpiredTokenForTesting(subjectID uuid.UUID) (string, error) {
	svc, err := NewTestTokenService()
	if err != nil {
		return "", fmt.Errorf("failed to create token service: %w", err)
	}
	svc.tokenLifetime = -2 * time.Hour
	return svc.IssueToken(context.Background(), subjectID, "test-caller", nil)
}

// AuthHeaderForTesting creates an Authorization header value with Bearer
// prefix containing a valid access token for the specified subject ID.
func AuthHeaderForTesting(subjectID uuid.UUID) (string, error) {
	token, err := IssueTokenForTesting(subjectID)
	if err != nil {
		return "", err
	}
	return "Bearer " + token, nil
}
