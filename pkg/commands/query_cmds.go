package commands

import (
	"github.com/aaviondb/aaviondb/pkg/filter"
	"github.com/aaviondb/aaviondb/pkg/model"
)

func registerQueryCommands(deps Dependencies) {
	deps.Registry.Register("query", handleQuery(deps))
}

func handleQuery(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		project, err := requireString(params, "project")
		if err != nil {
			return nil, err
		}

		entities, err := deps.Repo.ListEntities(project)
		if err != nil {
			return nil, err
		}
		byslug := make(map[string]*model.Entity, len(entities))
		for _, e := range entities {
			byslug[e.Slug] = e
		}

		result := filter.Apply(byslug, filterDefsParam(params, "entity_filters"))
		return map[string]interface{}{
			"project":    project,
			"slugs":      result.Slugs,
			"directives": result.Directives,
		}, nil
	}
}
