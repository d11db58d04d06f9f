package commands

func registerBrainCommands(deps Dependencies) {
	deps.Registry.Register("help", handleHelp())
	deps.Registry.Register("diagnose", handleDiagnose(deps))
	deps.Registry.Register("brain.report", handleBrainReport(deps))
}

func handleHelp() func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		commands := make(map[string]interface{}, len(catalog))
		for action, entry := range catalog {
			commands[action] = entry
		}
		return map[string]interface{}{"commands": commands}, nil
	}
}

func handleDiagnose(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		out := map[string]interface{}{
			"active_brain":      deps.Repo.ActiveBrain(),
			"registered_actions": deps.Registry.Actions(),
		}
		if deps.Bus != nil {
			out["event_patterns"] = deps.Bus.Patterns()
		}
		if rep, err := deps.Repo.IntegrityReport("system"); err == nil {
			out["system_integrity"] = rep
		}
		if slug := deps.Repo.ActiveBrain(); slug != "" {
			if rep, err := deps.Repo.IntegrityReport(slug); err == nil {
				out["active_integrity"] = rep
			}
		}
		return out, nil
	}
}

func handleBrainReport(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		slug := stringParam(params, "slug")
		rep, err := deps.Repo.BrainReport(slug)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"report": rep}, nil
	}
}
