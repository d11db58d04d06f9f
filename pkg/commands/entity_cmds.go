package commands

import (
	"strconv"

	"github.com/aaviondb/aaviondb/pkg/brain"
	"github.com/aaviondb/aaviondb/pkg/model"
	"github.com/aaviondb/aaviondb/pkg/resolver"
)

func registerEntityCommands(deps Dependencies) {
	deps.Registry.Register("save", handleSave(deps))
	deps.Registry.Register("show", handleShow(deps))
	deps.Registry.Register("list", handleList(deps))
	deps.Registry.Register("history", handleHistory(deps))
	deps.Registry.Register("deactivate", handleDeactivate(deps))
	deps.Registry.Register("remove", handleRemove(deps))
	deps.Registry.Register("delete", handleDelete(deps))
	deps.Registry.Register("restore", handleRestore(deps))
}

func handleSave(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		project, err := requireString(params, "project")
		if err != nil {
			return nil, err
		}
		entity, err := requireString(params, "entity")
		if err != nil {
			return nil, err
		}
		payload := payloadParam(params, "payload")
		meta := payloadParam(params, "meta")

		opts := brain.SaveOptions{
			Merge:        boolParam(params, "merge", false),
			Parent:       stringParam(params, "parent"),
			PathSegments: stringSliceParam(params, "path_segments"),
		}

		result, err := deps.Repo.SaveEntity(project, entity, payload, meta, opts)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"record":  recordView(project, entity, result.Version),
			"changed": result.Changed,
		}, nil
	}
}

func handleShow(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		project, err := requireString(params, "project")
		if err != nil {
			return nil, err
		}
		entity, err := requireString(params, "entity")
		if err != nil {
			return nil, err
		}
		reference := stringParam(params, "reference")

		v, err := deps.Repo.GetEntityVersion(project, entity, reference)
		if err != nil {
			return nil, err
		}

		resolved := v.Payload
		if deps.Resolver != nil {
			ctx := &resolver.Context{
				Project: project,
				Entity:  entity,
				UID:     resolver.UIDFor(project, entity),
				Version: v.Version,
				Payload: v.Payload,
			}
			resolved = deps.Resolver.ResolvePayload(ctx, v.Payload)
		}

		out := recordView(project, entity, v)
		out["payload"] = resolved
		return map[string]interface{}{"record": out}, nil
	}
}

func handleList(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		project, err := requireString(params, "project")
		if err != nil {
			return nil, err
		}
		entities, err := deps.Repo.ListEntities(project)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"entities": entities}, nil
	}
}

func handleHistory(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		project, err := requireString(params, "project")
		if err != nil {
			return nil, err
		}
		entity, err := requireString(params, "entity")
		if err != nil {
			return nil, err
		}
		versions, err := deps.Repo.ListEntityVersions(project, entity)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"versions": versions}, nil
	}
}

func handleDeactivate(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		project, err := requireString(params, "project")
		if err != nil {
			return nil, err
		}
		entity, err := requireString(params, "entity")
		if err != nil {
			return nil, err
		}
		if err := deps.Repo.DeactivateEntity(project, entity); err != nil {
			return nil, err
		}
		return map[string]interface{}{"project": project, "entity": entity, "deactivated": true}, nil
	}
}

func handleRemove(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		project, err := requireString(params, "project")
		if err != nil {
			return nil, err
		}
		entity, err := requireString(params, "entity")
		if err != nil {
			return nil, err
		}
		reference, err := requireString(params, "reference")
		if err != nil {
			return nil, err
		}
		if err := deps.Repo.DeleteEntityVersion(project, entity, reference); err != nil {
			return nil, err
		}
		return map[string]interface{}{"project": project, "entity": entity, "reference": reference, "removed": true}, nil
	}
}

func handleDelete(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		project, err := requireString(params, "project")
		if err != nil {
			return nil, err
		}
		entity, err := requireString(params, "entity")
		if err != nil {
			return nil, err
		}
		purge := boolParam(params, "purge", false)
		if err := deps.Repo.DeleteEntity(project, entity, purge); err != nil {
			return nil, err
		}
		return map[string]interface{}{"project": project, "entity": entity, "deleted": true}, nil
	}
}

func handleRestore(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		project, err := requireString(params, "project")
		if err != nil {
			return nil, err
		}
		entity, err := requireString(params, "entity")
		if err != nil {
			return nil, err
		}
		reference, err := requireString(params, "reference")
		if err != nil {
			return nil, err
		}
		result, err := deps.Repo.RestoreEntityVersion(project, entity, reference)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"record":  recordView(project, entity, result.Version),
			"changed": result.Changed,
		}, nil
	}
}

func recordView(project, entity string, v *model.Version) map[string]interface{} {
	return map[string]interface{}{
		"project": project,
		"entity":  entity,
		"version": strconv.Itoa(v.Version),
		"commit":  v.Commit,
		"status":  string(v.Status),
		"payload": v.Payload,
		"meta":    v.Meta,
	}
}
