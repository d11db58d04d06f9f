package commands

import (
	"github.com/aaviondb/aaviondb/pkg/export"
)

func registerExportCommands(deps Dependencies) {
	deps.Registry.Register("export", handleExport(deps))
	deps.Registry.Register("export.preset.list", handleExportPresetList(deps))
	deps.Registry.Register("export.layout.list", handleExportLayoutList(deps))
}

func handleExport(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		req := export.Request{
			ProjectTargets: stringSliceParam(params, "project_targets"),
			Preset:         stringParam(params, "preset"),
			Params:         stringMapParam(params, "params"),
			Description:    stringParam(params, "description"),
			Usage:          stringParam(params, "usage"),
			EntityFilters:  filterDefsParam(params, "entity_filters"),
			PayloadFilters: filterDefsParam(params, "payload_filters"),
			Whitelist:      stringSliceParam(params, "whitelist"),
			Blacklist:      stringSliceParam(params, "blacklist"),
			Version:        stringParam(params, "version"),
		}
		bundle, err := deps.Export.Export(req)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"bundle": bundle}, nil
	}
}

func handleExportPresetList(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		slugs, err := deps.Repo.ListPresets()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"presets": slugs}, nil
	}
}

func handleExportLayoutList(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		slugs, err := deps.Repo.ListLayouts()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"layouts": slugs}, nil
	}
}
