// Package auth verifies the bearer tokens protecting the API hosts.
//
// Hosts never issue tokens to callers; issuance belongs to the identity
// system (or cmd/tokengen during development). The hosts only verify
// HMAC-signed JWTs against the shared secret and expose the confirmed
// identity to the request pipeline.
package auth
