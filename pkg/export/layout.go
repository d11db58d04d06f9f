package export

import (
	"encoding/json"
	"strings"

	"github.com/aaviondb/aaviondb/pkg/model"
	"github.com/aaviondb/aaviondb/pkg/payloadpath"
)

// render fetches presetSlug's layout (falling back to a default JSON
// rendering of data when no layout is configured) and substitutes
// "${placeholders}" against data, including an "entity_template"
// applied once per entity (spec.md §4.12 rule 6).
func (e *Engine) render(presetSlug string, preset model.Payload, data map[string]interface{}) (string, error) {
	layoutSlug := ""
	if preset != nil {
		if meta, ok := preset["meta"].(map[string]interface{}); ok {
			if s, ok := meta["layout"].(string); ok {
				layoutSlug = s
			}
		}
	}

	var layout model.Payload
	if layoutSlug != "" {
		l, found, err := e.repo.GetLayout(layoutSlug)
		if err != nil {
			return "", err
		}
		if found {
			layout = l
		}
	}
	if layout == nil {
		raw, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}

	template, _ := layout["template"].(string)
	rendered := substitutePlaceholders(template, data)

	if entityTemplate, ok := layout["entity_template"].(string); ok && entityTemplate != "" {
		rendered = strings.ReplaceAll(rendered, "${entity_template}", renderEntityTemplate(entityTemplate, data))
	}
	return rendered, nil
}

func renderEntityTemplate(tmpl string, data map[string]interface{}) string {
	projects, _ := data["projects"].(map[string]interface{})
	var out strings.Builder
	for project, entities := range projects {
		m, ok := entities.(map[string]interface{})
		if !ok {
			continue
		}
		for entity, payload := range m {
			itemData := map[string]interface{}{
				"project": project,
				"entity":  entity,
				"payload": payload,
			}
			out.WriteString(substitutePlaceholders(tmpl, itemData))
		}
	}
	return out.String()
}

func substitutePlaceholders(tmpl string, data map[string]interface{}) string {
	if !strings.Contains(tmpl, "${") {
		return tmpl
	}
	var out strings.Builder
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] == '$' && i+1 < len(tmpl) && tmpl[i+1] == '{' {
			end := strings.IndexByte(tmpl[i+2:], '}')
			if end < 0 {
				out.WriteByte(tmpl[i])
				continue
			}
			end += i + 2
			path := tmpl[i+2 : end]
			if v, ok := payloadpath.Get(data, path); ok {
				writeValue(&out, v)
			}
			i = end
			continue
		}
		out.WriteByte(tmpl[i])
	}
	return out.String()
}

func writeValue(out *strings.Builder, v interface{}) {
	switch t := v.(type) {
	case string:
		out.WriteString(t)
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return
		}
		out.Write(raw)
	}
}
