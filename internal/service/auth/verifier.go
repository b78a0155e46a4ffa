package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenVerifier checks bearer tokens presented to the API hosts. It is the
// only authentication surface the hosts depend on; how tokens come to exist
// is someone else's problem.
type TokenVerifier interface {
	// VerifyToken validates the provided token string and extracts the claims.
	// Returns the claims identifying the caller if the token is valid, or an
	// error if validation fails (expired, invalid signature, wrong type, etc.).
	VerifyToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the verified identity carried by an API token.
type Claims struct {
	// SubjectID is the unique identifier of the principal the token was
	// issued for, taken from the sub claim.
	SubjectID uuid.UUID `json:"sub,omitempty"`

	// Name is a human-readable label for the principal, such as a service
	// or operator name.
	Name string `json:"name,omitempty"`

	// Scopes lists the access scopes granted to the token.
	Scopes []string `json:"scopes,omitempty"`

	// Standard registered JWT claims
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
