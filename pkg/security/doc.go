// Package security implements AavionDB's SecurityManager (spec.md
// §4.8): per-client and aggregate request-rate limiting, failure
// tracking, and lockdown state. Configuration lives in the system
// brain under the "security." config namespace; counters are
// ephemeral, kept in pkg/cache under 60-second windows keyed by
// floor(now/60) so they age out without explicit cleanup.
package security
