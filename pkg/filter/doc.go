// Package filter implements AavionDB's FilterEngine (spec.md §4.10): a
// declarative, type-dispatched predicate evaluator over entity slugs
// within a project. Generalized from the linear-scan-plus-equality-
// predicate shape of a typed list query into an open type registry so
// ExportEngine and the `query` command handler can share one
// evaluator.
package filter
