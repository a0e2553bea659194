// Package middleware exposes HTTP middleware adapters built on top of
// portalauth.Engine token validation.
//
// # Guards
//
//   - [Guard] — verifies the bearer token and injects session claims.
//   - [RequireRole] — Guard plus a role check.
//   - [RequireActiveCredential] — Guard plus a credential-status check,
//     for routes that must not be reachable mid password setup.
//
// Each guard reads the Authorization header, calls Engine.Validate, and
// injects the validated claims into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself. All decisions are delegated to
// Engine.Validate; the guards only map its outcomes to status codes.
//
// # What this package must NOT do
//
//   - Parse or create session tokens directly (delegates to Engine).
//   - Access the account store (Engine handles I/O).
//   - Make authorization decisions beyond role and credential status.
package middleware
