// Package api implements the HTTP REST API and WebSocket event stream for
// the gateway fleet.
//
// This package provides:
//   - REST endpoints for gateway and device CRUD, attach/detach and the
//     per-gateway audit trail
//   - Boundary validation of ids and request bodies, and the mapping of
//     domain error kinds onto HTTP status codes
//   - A WebSocket hub that streams audit entries as they are recorded
//   - Middleware stack (request ID, access log, recovery, metrics, CORS,
//     rate limiting, body limit, optional JWT bearer auth)
//
// # Architecture
//
// Handlers decode and validate the request, call the gateway or device
// service and encode the result. The services own every business rule; the
// adapter only rejects input that is malformed. Errors carry an apperr.Kind
// which chooses the status code; internal errors are logged here and their
// detail is never returned to the client.
//
// # Security
//
// When security.jwt.enabled is set, every route except /health and
// /metrics requires an HS256 bearer token. Viewers may only read; writes
// need the operator or admin role. Browsers cannot set headers on a
// WebSocket handshake, so /ws also accepts the token as access_token.
package api
