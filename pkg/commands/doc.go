// Package commands wires the full command vocabulary (spec.md §6,
// SPEC_FULL.md's "Command vocabulary") onto a command.Registry. Every
// handler here is a thin adapter: it extracts typed arguments out of
// the parameters map dispatch hands it, calls straight into
// BrainRepository / FilterEngine / ResolverEngine / ExportEngine /
// AuthManager / SecurityManager / ModuleLoader, and shapes the result
// into the `data` half of the response envelope. Business rules and
// invariants live in those packages, not here.
package commands
