package brain

import (
	"sort"
	"time"

	"github.com/aaviondb/aaviondb/internal/apperr"
	"github.com/aaviondb/aaviondb/pkg/model"
)

// ListProjects returns every project in the active brain, sorted by
// slug, regardless of status.
func (r *Repository) ListProjects() ([]*model.Project, error) {
	b, err := r.load(false, r.ActiveBrain())
	if err != nil {
		return nil, err
	}
	out := make([]*model.Project, 0, len(b.Projects))
	for _, p := range b.Projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

// GetProject returns a single project by slug.
func (r *Repository) GetProject(slug string) (*model.Project, error) {
	b, err := r.load(false, r.ActiveBrain())
	if err != nil {
		return nil, err
	}
	p, ok := b.Projects[slug]
	if !ok {
		return nil, apperr.NotFound("project_not_found", "no such project: "+slug)
	}
	return p, nil
}

// CreateProject adds a new active project to the active brain.
func (r *Repository) CreateProject(slug, title, description string) (*model.Project, error) {
	if !validSlug(slug) {
		return nil, apperr.InvalidArgument("invalid_slug", "project slug must match [a-z0-9._-]+")
	}
	now := time.Now().UTC()
	brainSlug := r.ActiveBrain()
	result, err := r.mutate(false, brainSlug, func(b *model.Brain) error {
		if _, exists := b.Projects[slug]; exists {
			return apperr.New(apperr.KindConflict, "project_exists", "project already exists: "+slug)
		}
		b.Projects[slug] = &model.Project{
			Slug:        slug,
			Title:       title,
			Description: description,
			Status:      model.ProjectActive,
			CreatedAt:   now,
			UpdatedAt:   now,
			Entities:    map[string]*model.Entity{},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if r.bus != nil {
		r.bus.Emit("project.created", map[string]interface{}{"brain": brainSlug, "project": slug})
	}
	return result.Projects[slug], nil
}

// ArchiveProject marks a project archived; archived projects remain
// readable but reject new saves (spec.md §3, project status).
func (r *Repository) ArchiveProject(slug string) error {
	brainSlug := r.ActiveBrain()
	now := time.Now().UTC()
	_, err := r.mutate(false, brainSlug, func(b *model.Brain) error {
		p, ok := b.Projects[slug]
		if !ok {
			return apperr.NotFound("project_not_found", "no such project: "+slug)
		}
		p.Status = model.ProjectArchived
		p.ArchivedAt = &now
		p.UpdatedAt = now
		return nil
	})
	if err != nil {
		return err
	}
	if r.bus != nil {
		r.bus.Emit("project.archived", map[string]interface{}{"brain": brainSlug, "project": slug})
	}
	return nil
}

// DeleteProject removes a project and purges its commit-index entries.
func (r *Repository) DeleteProject(slug string) error {
	brainSlug := r.ActiveBrain()
	_, err := r.mutate(false, brainSlug, func(b *model.Brain) error {
		if _, ok := b.Projects[slug]; !ok {
			return apperr.NotFound("project_not_found", "no such project: "+slug)
		}
		delete(b.Projects, slug)
		for hash, entry := range b.CommitIndex {
			if entry.Project == slug {
				delete(b.CommitIndex, hash)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if r.bus != nil {
		r.bus.Emit("project.deleted", map[string]interface{}{"brain": brainSlug, "project": slug})
	}
	return nil
}

// ProjectReport summarizes entity and version counts for a project.
type ProjectReport struct {
	Slug            string `json:"slug"`
	Status          string `json:"status"`
	EntityCount     int    `json:"entity_count"`
	ActiveEntities  int    `json:"active_entities"`
	ArchivedEntities int   `json:"archived_entities"`
	VersionCount    int    `json:"version_count"`
}

// ProjectReport computes aggregate stats for a single project.
func (r *Repository) ProjectReport(slug string) (*ProjectReport, error) {
	p, err := r.GetProject(slug)
	if err != nil {
		return nil, err
	}
	rep := &ProjectReport{Slug: p.Slug, Status: string(p.Status), EntityCount: len(p.Entities)}
	for _, e := range p.Entities {
		if e.Status == model.EntityActive {
			rep.ActiveEntities++
		} else {
			rep.ArchivedEntities++
		}
		rep.VersionCount += len(e.Versions)
	}
	return rep, nil
}
