// Package flows contains the orchestrators for every Engine operation.
//
// Each flow function (RunLogin, RunSetPassword, RunAdminForceReset) accepts a
// typed dependency struct and has no side effects beyond those dependencies,
// which keeps the flows unit-testable with plain function stubs and keeps the
// Engine type thin.
//
// Flow functions coordinate the account store, token codec, credential
// hasher, lockout policy, audit dispatcher, and metrics. They own none of
// these resources; ownership stays with the Engine.
//
// The package must not import the root portalauth package (import cycle);
// sentinel errors and value mirrors cross the boundary through the
// dependency structs.
package flows
