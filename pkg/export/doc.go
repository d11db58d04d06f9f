// Package export implements AavionDB's ExportEngine (spec.md §4.12):
// resolves a preset or manual export request into a project/entity
// selection, applies payload transforms and ResolverEngine expansion,
// and renders the result against a layout template. Shaped after the
// teacher's metrics_collector "gather -> build stats -> render"
// three-phase flow, generalized from periodic metric snapshots to an
// on-demand data bundle.
package export
