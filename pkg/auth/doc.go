// Package auth implements AavionDB's AuthManager (spec.md §4.9):
// guardRestAccess resolves a bearer token (or admin secret) into an
// allow/deny decision plus the scope of projects the caller may touch.
// Token storage and hashing live in pkg/brain; this package only
// layers the decision rules and status-code mapping spec.md §6/§7
// requires on top of it.
package auth
