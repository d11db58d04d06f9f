// Package cache implements AavionDB's file-backed Cache (spec.md
// §4.7): one JSON document per key holding {value, expires_at, tags},
// with lazy TTL eviction on read and a many-to-many tag index enabling
// selective flush. Grounded on the write-then-rename pattern used
// throughout the BrainRepository, applied to loose per-key files
// instead of a single document.
package cache
