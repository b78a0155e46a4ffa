// Package apiversion implements URL-based API version dispatch for the
// platform hosts. Each host registers the versions it serves per resource in
// a Registry, configuration deprecates or removes versions over time, and the
// Middleware resolves the {version} path segment on every request into a
// Resolution that handlers use to pick the contract variant.
//
// The version lifecycle is one way: ACTIVE versions may become DEPRECATED,
// DEPRECATED versions may be REMOVED, and nothing ever moves back. Deprecated
// versions keep serving exactly as before; the only difference is a set of
// advisory response headers.
package apiversion
