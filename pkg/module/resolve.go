package module

import "fmt"

// ResolveResult is the outcome of dependency resolution: an init order
// for every module that can safely start, and the set of modules
// disabled because a dependency was missing, version-mismatched, or
// itself disabled (propagated transitively, per spec.md §4.6 — these
// are recorded, never thrown).
type ResolveResult struct {
	Order    []*Descriptor
	Disabled map[string]string // name -> reason
}

// Resolve topologically orders descs by their Requires edges, detects
// cycles, and disables any module whose dependency chain is broken.
func Resolve(descs []*Descriptor) *ResolveResult {
	byName := make(map[string]*Descriptor, len(descs))
	for _, d := range descs {
		byName[d.Name] = d
	}

	result := &ResolveResult{Disabled: map[string]string{}}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(descs))

	var visit func(d *Descriptor) bool // returns true if d ends up enabled
	visit = func(d *Descriptor) bool {
		switch state[d.Name] {
		case done:
			_, disabled := result.Disabled[d.Name]
			return !disabled
		case visiting:
			result.Disabled[d.Name] = "dependency cycle detected at " + d.Name
			return false
		}

		state[d.Name] = visiting
		defer func() { state[d.Name] = done }()

		for _, req := range d.Requires {
			slug, version := ParseRequirement(req)
			dep, ok := byName[slug]
			if !ok {
				result.Disabled[d.Name] = fmt.Sprintf("missing dependency %s", req)
				return false
			}
			if version != "" && dep.Version != version {
				result.Disabled[d.Name] = fmt.Sprintf("dependency %s requires version %s, found %s", slug, version, dep.Version)
				return false
			}
			if !visit(dep) {
				result.Disabled[d.Name] = fmt.Sprintf("dependency %s is disabled: %s", slug, result.Disabled[slug])
				return false
			}
		}

		result.Order = append(result.Order, d)
		return true
	}

	for _, d := range descs {
		if state[d.Name] == unvisited {
			visit(d)
		}
	}
	return result
}
