package commands

import (
	"github.com/aaviondb/aaviondb/pkg/module"
)

func registerModuleCommands(deps Dependencies) {
	deps.Registry.Register("module.list", handleModuleList(deps))
}

func handleModuleList(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		descs, err := module.Scan(deps.SystemModuleDir, deps.UserModuleDir)
		if err != nil {
			return nil, err
		}
		resolved := module.Resolve(descs)

		out := make([]map[string]interface{}, 0, len(descs))
		for _, d := range descs {
			out = append(out, map[string]interface{}{
				"name":         d.Name,
				"version":      d.Version,
				"scope":        string(d.Scope),
				"autoload":     d.Autoload,
				"requires":     d.Requires,
				"capabilities": d.Capabilities,
			})
		}
		return map[string]interface{}{
			"modules":  out,
			"disabled": resolved.Disabled,
		}, nil
	}
}
