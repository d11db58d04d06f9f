package export

import (
	"github.com/aaviondb/aaviondb/pkg/filter"
	"github.com/aaviondb/aaviondb/pkg/model"
)

// Request is an export invocation's input (spec.md §4.12:
// "(project-targets, selectors, preset?, params, description, usage)").
type Request struct {
	ProjectTargets []string
	Preset         string
	Params         map[string]string
	Description    string
	Usage          string

	EntityFilters  []filter.Definition
	PayloadFilters []filter.Definition
	Whitelist      []string
	Blacklist      []string
	Version        string // "", "@N", or "#hash"; applies to every selected entity
}

// Stats summarizes the exported data set.
type Stats struct {
	ProjectCount int `json:"project_count"`
	EntityCount  int `json:"entity_count"`
}

// Index lists the projects and, per project, the entity slugs
// included in the export.
type Index struct {
	Projects []string            `json:"projects"`
	Entities map[string][]string `json:"entities"`
}

// Bundle is the rendered export result.
type Bundle struct {
	Action      string                 `json:"action"`
	Scope       string                 `json:"scope"`
	Description string                 `json:"description,omitempty"`
	Usage       string                 `json:"usage,omitempty"`
	Stats       Stats                  `json:"stats"`
	Index       Index                  `json:"index"`
	Policies    model.Payload          `json:"policies"`
	Data        map[string]interface{} `json:"data"`
	Rendered    string                 `json:"rendered,omitempty"`
}

type entityExport struct {
	project string
	entity  string
	payload model.Payload
	version int
	commit  string
}
