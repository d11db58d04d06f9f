// Package resolver implements AavionDB's ResolverEngine (spec.md
// §4.11): expansion of inline "[ref ...]" and "[query ...]" shortcodes
// embedded in string payload fields, placeholder substitution against
// a ResolverContext, cycle detection, and the stripPayload routine
// that restores a resolved payload to its canonical bare-marker form.
package resolver
