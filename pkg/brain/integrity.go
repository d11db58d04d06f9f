package brain

import (
	"fmt"

	"github.com/aaviondb/aaviondb/pkg/codec"
	"github.com/aaviondb/aaviondb/pkg/model"
)

// IntegrityViolation describes one failed invariant check (spec.md §8).
type IntegrityViolation struct {
	Project string `json:"project,omitempty"`
	Entity  string `json:"entity,omitempty"`
	Version int    `json:"version,omitempty"`
	Reason  string `json:"reason"`
}

// IntegrityReport is the outcome of walking a brain's full history
// against the invariants of spec.md §8.
type IntegrityReport struct {
	Brain       string                `json:"brain"`
	Checked     int                   `json:"versions_checked"`
	Violations  []IntegrityViolation  `json:"violations"`
	CommitIndex int                   `json:"commit_index_entries"`
}

// IntegrityReport verifies, for every entity version in slug:
//   - hash(payload) == commit == hash
//   - at most one active version per entity
//   - every commit_index entry resolves to a version carrying that hash
func (r *Repository) IntegrityReport(slug string) (*IntegrityReport, error) {
	b, err := r.load(false, slug)
	if err != nil {
		return nil, err
	}

	rep := &IntegrityReport{Brain: slug, CommitIndex: len(b.CommitIndex)}

	for projSlug, p := range b.Projects {
		for entSlug, e := range p.Entities {
			activeCount := 0
			for _, v := range e.Versions {
				rep.Checked++
				wantHash, err := codec.Hash(v.Payload)
				if err != nil {
					rep.Violations = append(rep.Violations, IntegrityViolation{
						Project: projSlug, Entity: entSlug, Version: v.Version,
						Reason: fmt.Sprintf("payload is not hashable: %v", err),
					})
					continue
				}
				if wantHash != v.Hash || v.Hash != v.Commit {
					rep.Violations = append(rep.Violations, IntegrityViolation{
						Project: projSlug, Entity: entSlug, Version: v.Version,
						Reason: "hash/commit mismatch with canonical payload",
					})
				}
				if v.Status == model.VersionActive {
					activeCount++
				}
			}
			if activeCount > 1 {
				rep.Violations = append(rep.Violations, IntegrityViolation{
					Project: projSlug, Entity: entSlug,
					Reason: fmt.Sprintf("%d active versions, expected at most 1", activeCount),
				})
			}
			if activeCount == 1 {
				if v := e.ActiveVersionOf(); v == nil {
					rep.Violations = append(rep.Violations, IntegrityViolation{
						Project: projSlug, Entity: entSlug,
						Reason: "active_version does not match the active-status version",
					})
				}
			}
		}
	}

	for hash, entry := range b.CommitIndex {
		p, ok := b.Projects[entry.Project]
		if !ok {
			rep.Violations = append(rep.Violations, IntegrityViolation{Reason: "commit_index references missing project: " + entry.Project})
			continue
		}
		e, ok := p.Entities[entry.Entity]
		if !ok {
			rep.Violations = append(rep.Violations, IntegrityViolation{Reason: "commit_index references missing entity: " + entry.Entity})
			continue
		}
		v := e.FindVersion(entry.Version)
		if v == nil || v.Hash != hash {
			rep.Violations = append(rep.Violations, IntegrityViolation{
				Project: entry.Project, Entity: entry.Entity, Version: entry.Version,
				Reason: "commit_index entry does not resolve to a matching version hash",
			})
		}
	}

	return rep, nil
}

// BrainReport summarizes a brain's shape for diagnostics.
type BrainReport struct {
	Slug         string `json:"slug"`
	ProjectCount int    `json:"project_count"`
	EntityCount  int    `json:"entity_count"`
	VersionCount int    `json:"version_count"`
}

// BrainReport aggregates project/entity/version counts. An empty slug
// reports the active user brain.
func (r *Repository) BrainReport(slug string) (*BrainReport, error) {
	if slug == "" {
		slug = r.ActiveBrain()
	}
	b, err := r.load(false, slug)
	if err != nil {
		return nil, err
	}
	rep := &BrainReport{Slug: slug, ProjectCount: len(b.Projects)}
	for _, p := range b.Projects {
		rep.EntityCount += len(p.Entities)
		for _, e := range p.Entities {
			rep.VersionCount += len(e.Versions)
		}
	}
	return rep, nil
}
