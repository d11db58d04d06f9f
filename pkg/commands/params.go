package commands

import (
	"github.com/aaviondb/aaviondb/internal/apperr"
	"github.com/aaviondb/aaviondb/pkg/filter"
	"github.com/aaviondb/aaviondb/pkg/model"
)

func stringParam(params map[string]interface{}, key string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func requireString(params map[string]interface{}, key string) (string, error) {
	s := stringParam(params, key)
	if s == "" {
		return "", apperr.InvalidArgument("invalid_argument", "missing required parameter: "+key)
	}
	return s, nil
}

func boolParam(params map[string]interface{}, key string, def bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

func payloadParam(params map[string]interface{}, key string) model.Payload {
	if v, ok := params[key]; ok {
		if p, ok := v.(model.Payload); ok {
			return p
		}
		if m, ok := v.(map[string]interface{}); ok {
			return m
		}
	}
	return model.Payload{}
}

func stringSliceParam(params map[string]interface{}, key string) []string {
	v, ok := params[key]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case []string:
		return t
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	}
	return nil
}

func stringMapParam(params map[string]interface{}, key string) map[string]string {
	out := map[string]string{}
	v, ok := params[key]
	if !ok {
		return out
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return out
	}
	for k, e := range m {
		if s, ok := e.(string); ok {
			out[k] = s
		}
	}
	return out
}

func filterDefsParam(params map[string]interface{}, key string) []filter.Definition {
	v, ok := params[key]
	if !ok {
		return nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]filter.Definition, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		def := filter.Definition{}
		if t, ok := m["type"].(string); ok {
			def.Type = t
		}
		if c, ok := m["config"].(map[string]interface{}); ok {
			def.Config = c
		}
		out = append(out, def)
	}
	return out
}

func intParam(params map[string]interface{}, key string, def int) int {
	v, ok := params[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case int:
		return t
	case float64:
		return int(t)
	}
	return def
}
