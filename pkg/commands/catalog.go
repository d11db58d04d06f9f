package commands

// catalogEntry is the {description, group, usage} metadata spec.md §6
// says every command carries and `help` exposes.
type catalogEntry struct {
	Description string `json:"description"`
	Group       string `json:"group"`
	Usage       string `json:"usage"`
}

var catalog = map[string]catalogEntry{
	"help":         {"list every registered command with its metadata", "system", "help"},
	"diagnose":     {"report event-bus subscriptions and brain integrity", "system", "diagnose"},
	"brain.report": {"summarize project/entity/version counts for a brain", "system", `brain.report {"slug": "..."}`},

	"auth.token.create":   {"mint a new bearer token", "auth", `auth.token.create {"scope": "ALL", "projects": []}`},
	"auth.token.revoke":   {"deactivate a bearer token", "auth", `auth.token.revoke {"id": "..."}`},
	"auth.token.reset":    {"deactivate every bearer token", "auth", "auth.token.reset"},
	"auth.bootstrap.rotate": {"rotate the bootstrap key", "auth", "auth.bootstrap.rotate"},
	"api.enable":          {"enable the REST API", "auth", "api.enable"},
	"api.disable":         {"disable the REST API", "auth", "api.disable"},

	"config.list":   {"list the active brain's configuration", "config", "config.list"},
	"config.get":    {"read one config key", "config", `config.get {"key": "..."}`},
	"config.set":    {"set one config key", "config", `config.set {"key": "...", "value": ...}`},
	"config.delete": {"delete one config key", "config", `config.delete {"key": "..."}`},

	"project.create":  {"create a new project", "project", `project.create {"slug": "...", "title": "...", "description": "..."}`},
	"project.list":     {"list every project", "project", "project.list"},
	"project.archive":  {"archive a project", "project", `project.archive {"slug": "..."}`},
	"project.delete":   {"delete a project", "project", `project.delete {"slug": "..."}`},
	"project.report":   {"summarize a project's entities and versions", "project", `project.report {"slug": "..."}`},

	"save":       {"create or update an entity", "entity", `save <project> <entity> {...}`},
	"show":       {"fetch an entity's active (or referenced) version", "entity", `show <project> <entity> [reference]`},
	"list":       {"list every entity in a project", "entity", `list <project>`},
	"history":    {"list every version of an entity", "entity", `history <project> <entity>`},
	"deactivate": {"archive an entity without deleting history", "entity", `deactivate <project> <entity>`},
	"remove":     {"delete one version of an entity", "entity", `remove <project> <entity> <reference>`},
	"delete":     {"delete an entity", "entity", `delete <project> <entity>`},
	"restore":    {"restore an archived/older version to active", "entity", `restore <project> <entity> <reference>`},

	"query": {"select entity slugs in a project via the filter engine", "filter", `query {"project": "...", "entity_filters": [...]}`},

	"export":              {"build and render an export bundle", "export", `export {"project_targets": ["*"], "preset": "..."}`},
	"export.preset.list":  {"list export presets", "export", "export.preset.list"},
	"export.layout.list":  {"list export layouts", "export", "export.layout.list"},

	"module.list": {"list discovered modules and their load status", "module", "module.list"},

	"cron": {"run every scheduler task whose interval has elapsed", "cron", "cron"},
}
