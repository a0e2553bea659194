// Package portalauth is the account-authentication and password-lifecycle
// engine of the resident-services portal. It verifies presented credentials
// against accounts that may still carry their system-issued default
// credential, throttles and locks accounts under repeated failures with a
// sliding window, mints and verifies tamper-evident session tokens, and
// drives the transitions between the "must set password" and "password
// active" states, including the administrative forced-reset path.
//
// The engine is request-scoped and stateless between calls: all durable
// state lives in the account record behind the [AccountStore] interface.
// Concurrent attempts against the same account are serialized through the
// store's optimistic version check; the engine retries a bounded number of
// times on conflict rather than lose a failed-attempt increment.
//
// # Architecture boundaries
//
// portalauth is the public surface. It exposes [Engine], [Builder],
// [Config], sentinel errors, and value types. Flow orchestration, the
// lockout state machine, default-credential derivation, audit dispatch, and
// metric counters live under internal/ and are never exported. The token
// codec and password hasher are importable sub-packages (token/, password/)
// because collaborators verify tokens and registration tooling hashes
// secrets. A ready Redis-backed [AccountStore] lives in redisstore/.
//
// # What this package must NOT do
//
//   - Expose store clients or encoding details in its public API.
//   - Perform I/O outside of Engine methods.
//   - Treat signing-key or store misconfiguration as a credential failure.
package portalauth
