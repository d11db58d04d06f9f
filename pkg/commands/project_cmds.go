package commands

func registerProjectCommands(deps Dependencies) {
	deps.Registry.Register("project.create", handleProjectCreate(deps))
	deps.Registry.Register("project.list", handleProjectList(deps))
	deps.Registry.Register("project.archive", handleProjectArchive(deps))
	deps.Registry.Register("project.delete", handleProjectDelete(deps))
	deps.Registry.Register("project.report", handleProjectReport(deps))
}

func handleProjectCreate(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		slug, err := requireString(params, "slug")
		if err != nil {
			return nil, err
		}
		title := stringParam(params, "title")
		description := stringParam(params, "description")
		p, err := deps.Repo.CreateProject(slug, title, description)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"project": p}, nil
	}
}

func handleProjectList(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		projects, err := deps.Repo.ListProjects()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"projects": projects}, nil
	}
}

func handleProjectArchive(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		slug, err := requireString(params, "slug")
		if err != nil {
			return nil, err
		}
		if err := deps.Repo.ArchiveProject(slug); err != nil {
			return nil, err
		}
		return map[string]interface{}{"slug": slug, "archived": true}, nil
	}
}

func handleProjectDelete(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		slug, err := requireString(params, "slug")
		if err != nil {
			return nil, err
		}
		if err := deps.Repo.DeleteProject(slug); err != nil {
			return nil, err
		}
		return map[string]interface{}{"slug": slug, "deleted": true}, nil
	}
}

func handleProjectReport(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		slug, err := requireString(params, "slug")
		if err != nil {
			return nil, err
		}
		rep, err := deps.Repo.ProjectReport(slug)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"report": rep}, nil
	}
}
