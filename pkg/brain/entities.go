package brain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aaviondb/aaviondb/internal/apperr"
	"github.com/aaviondb/aaviondb/pkg/codec"
	"github.com/aaviondb/aaviondb/pkg/model"
)

// ListEntities returns every entity in project, sorted by slug.
func (r *Repository) ListEntities(project string) ([]*model.Entity, error) {
	p, err := r.GetProject(project)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Entity, 0, len(p.Entities))
	for _, e := range p.Entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (r *Repository) getEntityLocked(b *model.Brain, project, entity string) (*model.Project, *model.Entity, error) {
	p, ok := b.Projects[project]
	if !ok {
		return nil, nil, apperr.NotFound("not_found", "no such project: "+project)
	}
	e, ok := p.Entities[entity]
	if !ok {
		return nil, nil, apperr.NotFound("not_found", "no such entity: "+project+"."+entity)
	}
	return p, e, nil
}

// GetEntity returns a single entity by project and slug.
func (r *Repository) GetEntity(project, entity string) (*model.Entity, error) {
	b, err := r.load(false, r.ActiveBrain())
	if err != nil {
		return nil, err
	}
	_, e, err := r.getEntityLocked(b, project, entity)
	return e, err
}

// EntityReport summarizes an entity's version history.
type EntityReport struct {
	Project       string           `json:"project"`
	Entity        string           `json:"entity"`
	Status        string           `json:"status"`
	ActiveVersion int              `json:"active_version,string"`
	VersionCount  int              `json:"version_count"`
	Versions      []*model.Version `json:"versions,omitempty"`
}

// EntityReport computes summary stats, optionally including the full
// version list (withVersions).
func (r *Repository) EntityReport(project, entity string, withVersions bool) (*EntityReport, error) {
	e, err := r.GetEntity(project, entity)
	if err != nil {
		return nil, err
	}
	rep := &EntityReport{
		Project:       project,
		Entity:        entity,
		Status:        string(e.Status),
		ActiveVersion: e.ActiveVersion,
		VersionCount:  len(e.Versions),
	}
	if withVersions {
		rep.Versions = e.Versions
	}
	return rep, nil
}

// ListEntityVersions returns every version of an entity, oldest first.
func (r *Repository) ListEntityVersions(project, entity string) ([]*model.Version, error) {
	e, err := r.GetEntity(project, entity)
	if err != nil {
		return nil, err
	}
	return e.Versions, nil
}

// resolveVersion selects a version by reference: "@N" or bare "N" for
// a version number, "#hash" for a commit hash, or "" for the active
// version.
func resolveVersion(e *model.Entity, reference string) (*model.Version, error) {
	ref := strings.TrimSpace(reference)
	if ref == "" {
		if v := e.ActiveVersionOf(); v != nil {
			return v, nil
		}
		return nil, apperr.NotFound("not_found", "entity has no active version")
	}
	if strings.HasPrefix(ref, "#") {
		hash := strings.TrimPrefix(ref, "#")
		if v := e.FindVersionByHash(hash); v != nil {
			return v, nil
		}
		return nil, apperr.NotFound("not_found", "no version with commit "+hash)
	}
	numStr := strings.TrimPrefix(ref, "@")
	n, err := strconv.Atoi(numStr)
	if err != nil {
		return nil, apperr.InvalidArgument("invalid_argument", "version reference must be @N, #hash, or a bare number")
	}
	if v := e.FindVersion(n); v != nil {
		return v, nil
	}
	return nil, apperr.NotFound("not_found", fmt.Sprintf("no version %d", n))
}

// GetEntityVersion fetches a version by reference ("@N", "#hash", bare
// "N", or "" for active).
func (r *Repository) GetEntityVersion(project, entity, reference string) (*model.Version, error) {
	e, err := r.GetEntity(project, entity)
	if err != nil {
		return nil, err
	}
	return resolveVersion(e, reference)
}

// SaveOptions configures SaveEntity.
type SaveOptions struct {
	Merge        bool
	Parent       string
	PathSegments []string
}

// SaveResult reports the outcome of SaveEntity.
type SaveResult struct {
	Entity  *model.Entity
	Version *model.Version
	Changed bool
}

// SaveEntity creates or updates an entity, appending a new version iff
// the post-merge canonical payload differs from the current active
// payload (spec.md §4.3, "Save semantics").
func (r *Repository) SaveEntity(project, entitySlug string, payload model.Payload, meta model.Payload, opts SaveOptions) (*SaveResult, error) {
	if !validSlug(entitySlug) {
		return nil, apperr.InvalidArgument("invalid_slug", "entity slug must match [a-z0-9._-]+")
	}

	brainSlug := r.ActiveBrain()
	var result SaveResult

	_, err := r.mutate(false, brainSlug, func(b *model.Brain) error {
		p, ok := b.Projects[project]
		if !ok {
			return apperr.NotFound("not_found", "no such project: "+project)
		}
		if p.Status != model.ProjectActive {
			return apperr.New(apperr.KindConflict, "conflict", "project is not active: "+project)
		}

		now := time.Now().UTC()
		e, exists := p.Entities[entitySlug]
		if !exists {
			e = &model.Entity{
				Slug:         entitySlug,
				Parent:       opts.Parent,
				PathSegments: opts.PathSegments,
				Status:       model.EntityActive,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			p.Entities[entitySlug] = e
		}

		finalPayload := payload
		if opts.Merge {
			if current := e.ActiveVersionOf(); current != nil {
				finalPayload = deepMergeDeleteEmpty(current.Payload, payload)
			}
		}

		hash, err := codec.Hash(finalPayload)
		if err != nil {
			return apperr.Wrap(apperr.KindInternal, "internal", "hash payload", err)
		}

		if current := e.ActiveVersionOf(); current != nil && current.Hash == hash {
			result = SaveResult{Entity: e, Version: current, Changed: false}
			return nil
		}

		nextNum := len(e.Versions) + 1
		for _, v := range e.Versions {
			if v.Status == model.VersionActive {
				v.Status = model.VersionInactive
			}
		}
		v := &model.Version{
			Version:     nextNum,
			Status:      model.VersionActive,
			Hash:        hash,
			Commit:      hash,
			CommittedAt: now,
			Payload:     finalPayload,
			Meta:        meta,
		}
		e.Versions = append(e.Versions, v)
		e.ActiveVersion = nextNum
		e.Status = model.EntityActive
		e.UpdatedAt = now

		b.CommitIndex[hash] = model.CommitEntry{Project: project, Entity: entitySlug, Version: nextNum}

		result = SaveResult{Entity: e, Version: v, Changed: true}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if r.bus != nil && result.Changed {
		r.bus.Emit("command.executed", map[string]interface{}{
			"action":  "save",
			"brain":   brainSlug,
			"project": project,
			"entity":  entitySlug,
			"version": result.Version.Version,
			"commit":  result.Version.Commit,
		})
	}
	return &result, nil
}

// deepMergeDeleteEmpty deep-merges incoming over base; any key whose
// incoming value is the empty string is deleted instead of set
// (spec.md §4.3, merge semantics).
func deepMergeDeleteEmpty(base, incoming model.Payload) model.Payload {
	out := make(model.Payload, len(base))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range incoming {
		if s, ok := v.(string); ok && s == "" {
			delete(out, k)
			continue
		}
		if nested, ok := v.(model.Payload); ok {
			if baseNested, ok := out[k].(model.Payload); ok {
				out[k] = deepMergeDeleteEmpty(baseNested, nested)
				continue
			}
		}
		out[k] = v
	}
	return out
}

// DeactivateEntity soft-archives an entity without removing history.
func (r *Repository) DeactivateEntity(project, entity string) error {
	brainSlug := r.ActiveBrain()
	_, err := r.mutate(false, brainSlug, func(b *model.Brain) error {
		_, e, err := r.getEntityLocked(b, project, entity)
		if err != nil {
			return err
		}
		e.Status = model.EntityArchived
		for _, v := range e.Versions {
			if v.Status == model.VersionActive {
				v.Status = model.VersionArchived
			}
		}
		e.ActiveVersion = 0
		e.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return err
	}
	if r.bus != nil {
		r.bus.Emit("command.executed", map[string]interface{}{"action": "deactivate", "brain": brainSlug, "project": project, "entity": entity})
	}
	return nil
}

// DeleteEntity hard-deletes an entity, optionally purging its
// commit-index entries.
func (r *Repository) DeleteEntity(project, entity string, purge bool) error {
	brainSlug := r.ActiveBrain()
	_, err := r.mutate(false, brainSlug, func(b *model.Brain) error {
		p, _, err := r.getEntityLocked(b, project, entity)
		if err != nil {
			return err
		}
		if purge {
			for hash, entry := range b.CommitIndex {
				if entry.Project == project && entry.Entity == entity {
					delete(b.CommitIndex, hash)
				}
			}
		}
		delete(p.Entities, entity)
		return nil
	})
	if err != nil {
		return err
	}
	if r.bus != nil {
		r.bus.Emit("command.executed", map[string]interface{}{"action": "delete", "brain": brainSlug, "project": project, "entity": entity})
	}
	return nil
}

// DeleteEntityVersion removes a single version, reassigning
// active_version to the next most recent version, or archiving the
// entity if none remain (spec.md §4.3).
func (r *Repository) DeleteEntityVersion(project, entity, reference string) error {
	brainSlug := r.ActiveBrain()
	_, err := r.mutate(false, brainSlug, func(b *model.Brain) error {
		_, e, err := r.getEntityLocked(b, project, entity)
		if err != nil {
			return err
		}
		target, err := resolveVersion(e, reference)
		if err != nil {
			return err
		}

		remaining := make([]*model.Version, 0, len(e.Versions)-1)
		for _, v := range e.Versions {
			if v.Version == target.Version {
				delete(b.CommitIndex, v.Hash)
				continue
			}
			remaining = append(remaining, v)
		}
		e.Versions = remaining

		if target.Status == model.VersionActive {
			if len(remaining) == 0 {
				e.ActiveVersion = 0
				e.Status = model.EntityArchived
			} else {
				latest := remaining[len(remaining)-1]
				latest.Status = model.VersionActive
				e.ActiveVersion = latest.Version
			}
		}
		e.UpdatedAt = time.Now().UTC()
		return nil
	})
	return err
}

// RestoreEntityVersion promotes an archived/inactive version back to
// active by appending a new version whose payload duplicates it, so
// history stays append-only (spec.md §4.3, "Lifecycle").
func (r *Repository) RestoreEntityVersion(project, entity, reference string) (*SaveResult, error) {
	e, err := r.GetEntity(project, entity)
	if err != nil {
		return nil, err
	}
	target, err := resolveVersion(e, reference)
	if err != nil {
		return nil, err
	}
	return r.SaveEntity(project, entity, target.Payload, target.Meta, SaveOptions{})
}
