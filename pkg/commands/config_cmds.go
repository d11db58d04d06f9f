package commands

func registerConfigCommands(deps Dependencies) {
	deps.Registry.Register("config.list", handleConfigList(deps))
	deps.Registry.Register("config.get", handleConfigGet(deps))
	deps.Registry.Register("config.set", handleConfigSet(deps))
	deps.Registry.Register("config.delete", handleConfigDelete(deps))
}

func handleConfigList(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		cfg, err := deps.Repo.ListConfig()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"config": cfg}, nil
	}
}

func handleConfigGet(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		key, err := requireString(params, "key")
		if err != nil {
			return nil, err
		}
		value, err := deps.Repo.GetConfigValue(key)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"key": key, "value": value}, nil
	}
}

func handleConfigSet(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		key, err := requireString(params, "key")
		if err != nil {
			return nil, err
		}
		value := params["value"]
		if err := deps.Repo.SetConfigValue(key, value); err != nil {
			return nil, err
		}
		return map[string]interface{}{"key": key, "value": value}, nil
	}
}

func handleConfigDelete(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		key, err := requireString(params, "key")
		if err != nil {
			return nil, err
		}
		if err := deps.Repo.DeleteConfigValue(key); err != nil {
			return nil, err
		}
		return map[string]interface{}{"key": key, "deleted": true}, nil
	}
}
