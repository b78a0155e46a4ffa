// Package api handles incoming HTTP requests, request validation, and
// response formatting for the versioned resource endpoints. It acts as an
// adapter between external clients and the internal application services:
// each handler dispatches on the API version resolved by the apiversion
// middleware, selecting exactly one service variant and DTO codec per
// request, and translates service errors into RFC 7807 problem responses.
package api
