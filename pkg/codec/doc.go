// Package codec implements AavionDB's canonical JSON serialization and
// content hashing (spec.md §4.2). Canonical form recursively sorts
// object keys, preserves array order, and emits minimal, unescaped
// JSON so that two semantically equal payloads always hash identically
// regardless of the key order they arrived in.
package codec
