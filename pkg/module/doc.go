// Package module implements the ModuleLoader (spec.md §4.6): manifest
// discovery across the system/user directory roots, slug[@version]
// dependency resolution with cycle detection, and scope-gated
// capability grants.
//
// Per the redesign flag in spec.md §9, initializers are not loaded
// dynamically from disk the way the distilled source does it — they
// are linked in statically at compile time via RegisterInitializer,
// called from each subsystem package's own init(). The on-disk
// manifest stays purely data-driven: it governs discovery, ordering,
// and capability metadata, never code loading.
package module
