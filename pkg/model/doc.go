// Package model defines AavionDB's on-disk data model (spec.md §3):
// brains, projects, entities, and versions, plus the auth/API substate
// carried by the system brain.
package model
