package auth

import "errors"

// Sentinel errors returned by token verification. Callers match these
// with errors.Is; the HTTP layer maps them onto problem responses.
var (
	// ErrInvalidToken covers malformed tokens and signature mismatches.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken is returned once a token's exp claim has passed.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid is returned while a token's nbf claim is still
	// in the future.
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken is returned when no token accompanies a request
	// that requires one.
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrWrongTokenType marks a structurally valid token whose type
	// claim is not an API access token.
	ErrWrongTokenType = errors.New("wrong token type")
)
