package export

import (
	"sort"
	"strconv"
	"strings"

	"github.com/aaviondb/aaviondb/internal/apperr"
	"github.com/aaviondb/aaviondb/pkg/brain"
	"github.com/aaviondb/aaviondb/pkg/filter"
	"github.com/aaviondb/aaviondb/pkg/model"
	"github.com/aaviondb/aaviondb/pkg/payloadpath"
	"github.com/aaviondb/aaviondb/pkg/resolver"
)

// Engine builds export bundles per spec.md §4.12.
type Engine struct {
	repo     *brain.Repository
	resolver *resolver.Engine
}

// New constructs an Engine.
func New(repo *brain.Repository, res *resolver.Engine) *Engine {
	return &Engine{repo: repo, resolver: res}
}

// Export resolves req into a rendered Bundle.
func (e *Engine) Export(req Request) (*Bundle, error) {
	mode := "manual"
	var preset model.Payload
	if req.Preset != "" {
		mode = "preset"
		p, err := e.repo.GetPreset(req.Preset)
		if err != nil {
			return nil, err
		}
		preset = p
		req = mergePresetSelection(req, preset)
	}

	projects, wildcard, err := e.resolveProjectTargets(req.ProjectTargets, req.Params)
	if err != nil {
		return nil, err
	}

	if mode == "manual" && len(projects) > 1 && (len(req.EntityFilters) > 0 || len(req.PayloadFilters) > 0) {
		return nil, apperr.InvalidArgument("invalid_argument", "manual mode with multiple projects may not use entity selectors")
	}

	index := Index{Entities: map[string][]string{}}
	var exported []entityExport

	for _, projSlug := range projects {
		entities, err := e.repo.ListEntities(projSlug)
		if err != nil {
			return nil, err
		}
		entityMap := make(map[string]*model.Entity, len(entities))
		for _, ent := range entities {
			entityMap[ent.Slug] = ent
		}

		selected := filter.Apply(entityMap, req.EntityFilters).Slugs
		if len(req.PayloadFilters) > 0 {
			narrowed := map[string]*model.Entity{}
			for _, slug := range selected {
				narrowed[slug] = entityMap[slug]
			}
			selected = filter.Apply(narrowed, req.PayloadFilters).Slugs
		}
		sort.Strings(selected)

		index.Projects = append(index.Projects, projSlug)
		index.Entities[projSlug] = selected

		for _, slug := range selected {
			v, err := e.repo.GetEntityVersion(projSlug, slug, req.Version)
			if err != nil {
				continue
			}
			payload := v.Payload
			if len(req.Whitelist) > 0 {
				payload = payloadpath.Whitelist(payload, req.Whitelist)
			}
			if len(req.Blacklist) > 0 {
				payload = payloadpath.Blacklist(payload, req.Blacklist)
			}
			if e.resolver != nil {
				ctx := &resolver.Context{
					Project: projSlug, Entity: slug, UID: resolver.UIDFor(projSlug, slug),
					Version: v.Version, Params: req.Params, Payload: payload,
				}
				payload = e.resolver.ResolvePayload(ctx, payload)
			}
			exported = append(exported, entityExport{
				project: projSlug, entity: slug, payload: payload,
				version: v.Version, commit: v.Commit,
			})
		}
	}

	scope := exportScope(wildcard, projects)
	policies := policiesFromPreset(preset)

	data := buildData(req, scope, index, exported)
	bundle := &Bundle{
		Action:      "export",
		Scope:       scope,
		Description: req.Description,
		Usage:       req.Usage,
		Stats:       Stats{ProjectCount: len(index.Projects), EntityCount: len(exported)},
		Index:       index,
		Policies:    policies,
		Data:        data,
	}

	rendered, err := e.render(req.Preset, preset, data)
	if err != nil {
		return nil, err
	}
	bundle.Rendered = rendered
	return bundle, nil
}

func mergePresetSelection(req Request, preset model.Payload) Request {
	selection, _ := preset["selection"].(map[string]interface{})
	if selection != nil {
		if len(req.ProjectTargets) == 0 {
			if projects, ok := selection["projects"].([]interface{}); ok {
				for _, p := range projects {
					if s, ok := p.(string); ok {
						req.ProjectTargets = append(req.ProjectTargets, s)
					}
				}
			}
		}
		if len(req.EntityFilters) == 0 {
			req.EntityFilters = definitionsFrom(selection["entities"])
		}
		if len(req.PayloadFilters) == 0 {
			req.PayloadFilters = definitionsFrom(selection["payload_filters"])
		}
	}
	transform, _ := preset["transform"].(map[string]interface{})
	if transform != nil {
		if len(req.Whitelist) == 0 {
			req.Whitelist = stringsFrom(transform["whitelist"])
		}
		if len(req.Blacklist) == 0 {
			req.Blacklist = stringsFrom(transform["blacklist"])
		}
	}
	return req
}

func definitionsFrom(v interface{}) []filter.Definition {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]filter.Definition, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		def := filter.Definition{}
		if t, ok := m["type"].(string); ok {
			def.Type = t
		}
		if c, ok := m["config"].(map[string]interface{}); ok {
			def.Config = c
		}
		out = append(out, def)
	}
	return out
}

func stringsFrom(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (e *Engine) resolveProjectTargets(targets []string, params map[string]string) (resolved []string, wildcard bool, err error) {
	seen := map[string]bool{}
	add := func(slug string) {
		if !seen[slug] {
			seen[slug] = true
			resolved = append(resolved, slug)
		}
	}

	for _, t := range targets {
		switch {
		case t == "*":
			wildcard = true
			all, lerr := e.repo.ListProjects()
			if lerr != nil {
				return nil, false, lerr
			}
			for _, p := range all {
				add(p.Slug)
			}
		case strings.HasPrefix(t, "${param.") && strings.HasSuffix(t, "}"):
			name := strings.TrimSuffix(strings.TrimPrefix(t, "${param."), "}")
			val, ok := params[name]
			if !ok || val == "" {
				return nil, false, apperr.InvalidArgument("invalid_argument", "missing required export parameter: "+name)
			}
			for _, s := range strings.Split(val, ",") {
				if s = strings.TrimSpace(s); s != "" {
					add(s)
				}
			}
		case t == "${project}":
			if val, ok := params["project"]; ok && val != "" {
				add(val)
			}
		default:
			add(t)
		}
	}
	return resolved, wildcard, nil
}

// exportScope classifies the export per spec.md §4.12: "brain" for a
// wildcard selector, "project" for a single resolved project, and
// "project_slice" otherwise (zero or several resolved projects).
// Entity and payload filters do not affect the scope.
func exportScope(wildcard bool, resolved []string) string {
	if wildcard {
		return "brain"
	}
	if len(resolved) == 1 {
		return "project"
	}
	return "project_slice"
}

func policiesFromPreset(preset model.Payload) model.Payload {
	if preset == nil {
		return model.Payload{"references": true, "cache": true}
	}
	if p, ok := preset["policies"].(map[string]interface{}); ok {
		return model.Payload(p)
	}
	return model.Payload{"references": true, "cache": true}
}

// buildData assembles the prepared data map a layout template
// substitutes against. Alongside the project/entity payload tree it
// carries a flat "entities" list so a consumer can walk every selected
// entity's content-addressed history without re-deriving project
// membership; each entry's payload_versions[0] is the exported
// version's {version, commit}, making export output independently
// verifiable against the source entity's commit history (spec.md §8).
func buildData(req Request, scope string, index Index, exported []entityExport) map[string]interface{} {
	projects := map[string]interface{}{}
	entities := make([]map[string]interface{}, 0, len(exported))
	for _, ex := range exported {
		proj, ok := projects[ex.project].(map[string]interface{})
		if !ok {
			proj = map[string]interface{}{}
			projects[ex.project] = proj
		}
		proj[ex.entity] = ex.payload

		entities = append(entities, map[string]interface{}{
			"project": ex.project,
			"entity":  ex.entity,
			"payload": ex.payload,
			"payload_versions": []map[string]interface{}{
				{"version": strconv.Itoa(ex.version), "commit": ex.commit},
			},
		})
	}
	return map[string]interface{}{
		"action":      "export",
		"scope":       scope,
		"description": req.Description,
		"usage":       req.Usage,
		"index":       index,
		"projects":    projects,
		"entities":    entities,
	}
}
