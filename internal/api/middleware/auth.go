package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/gridstonehq/gridstone-api/internal/api"
	"github.com/gridstonehq/gridstone-api/internal/api/shared"
	"github.com/gridstonehq/gridstone-api/internal/service/auth"
)

// AuthMiddleware rejects requests that do not carry a valid bearer token and
// stores the verified caller identity in the request context.
type AuthMiddleware struct {
	verifier auth.TokenVerifier
}

// NewAuthMiddleware creates an AuthMiddleware over the given verifier. It
// panics on a nil verifier because that is a wiring mistake, not a runtime
// condition.
func NewAuthMiddleware(verifier auth.TokenVerifier) *AuthMiddleware {
	if verifier == nil {
		panic("middleware: token verifier is required")
	}
	return &AuthMiddleware{verifier: verifier}
}

// Authenticate validates the Authorization header and adds the caller ID to
// the request context for authorized requests. Failures are logged at WARN
// because repeated rejections are an operational signal.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			shared.RespondWithProblemAndLog(w, r, api.MapErrorToProblem(err), err,
				shared.WithElevatedLogLevel())
			return
		}

		claims, err := m.verifier.VerifyToken(r.Context(), token)
		if err != nil {
			shared.RespondWithProblemAndLog(w, r, api.MapErrorToProblem(err), err,
				shared.WithElevatedLogLevel())
			return
		}

		ctx := context.WithValue(r.Context(), shared.IdentityContextKey, claims.SubjectID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", auth.ErrMissingToken
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fmt.Errorf("malformed authorization header: %w", auth.ErrInvalidToken)
	}

	return parts[1], nil
}

// CallerID extracts the authenticated caller ID from the request context.
// Returns the ID and a boolean indicating whether the request carried one.
func CallerID(r *http.Request) (uuid.UUID, bool) {
	callerID, ok := r.Context().Value(shared.IdentityContextKey).(uuid.UUID)
	return callerID, ok
}
