// Package pathlocator resolves AavionDB's on-disk layout (spec.md
// §4.1, §6) from a single configured root and ensures every directory
// it names exists.
package pathlocator
