package filter

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aaviondb/aaviondb/pkg/log"
	"github.com/aaviondb/aaviondb/pkg/model"
	"github.com/aaviondb/aaviondb/pkg/payloadpath"
)

// Definition is one filter entry in a selection list (spec.md §4.10).
type Definition struct {
	Type   string                 `json:"type"`
	Config map[string]interface{} `json:"config"`
}

// Result is the outcome of applying a filter list: the surviving
// entity slugs, plus any directive-style filters that do not narrow
// the set themselves (e.g. include_references).
type Result struct {
	Slugs      []string
	Directives map[string]interface{}
}

// CustomPredicate is a named predicate registrable at runtime for the
// custom_placeholder filter type.
type CustomPredicate func(e *model.Entity, payload model.Payload, config map[string]interface{}) bool

var (
	customMu    sync.RWMutex
	customTypes = map[string]CustomPredicate{}
)

// RegisterCustom installs a named predicate usable via
// {"type": "custom_placeholder", "config": {"name": name, ...}}.
func RegisterCustom(name string, fn CustomPredicate) {
	customMu.Lock()
	defer customMu.Unlock()
	customTypes[name] = fn
}

// Apply returns the slugs of entities satisfying every filter in defs.
// Unknown filter types are logged and ignored (they neither narrow nor
// reject the set), per spec.md §4.10.
func Apply(entities map[string]*model.Entity, defs []Definition) Result {
	directives := map[string]interface{}{}
	slugs := make([]string, 0, len(entities))
	for slug := range entities {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	kept := slugs[:0:0]
	for _, slug := range slugs {
		e := entities[slug]
		payload := activePayload(e)
		match := true
		for _, def := range defs {
			if isDirective(def.Type) {
				directives[def.Type] = def.Config
				continue
			}
			if !evaluate(e, payload, def) {
				match = false
				break
			}
		}
		if match {
			kept = append(kept, slug)
		}
	}
	return Result{Slugs: kept, Directives: directives}
}

func isDirective(t string) bool {
	return t == "include_references"
}

func activePayload(e *model.Entity) model.Payload {
	if v := e.ActiveVersionOf(); v != nil {
		return v.Payload
	}
	return model.Payload{}
}

func evaluate(e *model.Entity, payload model.Payload, def Definition) bool {
	switch def.Type {
	case "slug_equals":
		return e.Slug == stringConfig(def.Config, "value")
	case "slug_in":
		for _, v := range stringSliceConfig(def.Config, "values") {
			if e.Slug == v {
				return true
			}
		}
		return false
	case "parent_contains":
		return strings.Contains(e.Parent, stringConfig(def.Config, "value"))
	case "payload_contains":
		return payloadContains(payload, stringConfig(def.Config, "path"), def.Config["value"])
	case "payload_regex":
		return payloadRegex(payload, stringConfig(def.Config, "path"), stringConfig(def.Config, "pattern"))
	case "payload_numeric":
		return payloadNumeric(payload, stringConfig(def.Config, "path"), stringConfig(def.Config, "op"), def.Config["value"])
	case "payload_missing":
		_, found := payloadpath.Get(payload, stringConfig(def.Config, "path"))
		return !found
	case "custom_placeholder":
		return evaluateCustom(e, payload, def.Config)
	default:
		log.WithComponent("filter").Debug().Str("type", def.Type).Msg("unknown filter type ignored")
		return true
	}
}

func evaluateCustom(e *model.Entity, payload model.Payload, config map[string]interface{}) bool {
	name := stringConfig(config, "name")
	customMu.RLock()
	fn, ok := customTypes[name]
	customMu.RUnlock()
	if !ok {
		log.WithComponent("filter").Debug().Str("name", name).Msg("unregistered custom filter ignored")
		return true
	}
	return fn(e, payload, config)
}

func payloadContains(payload model.Payload, path string, want interface{}) bool {
	v, found := payloadpath.Get(payload, path)
	if !found {
		return false
	}
	switch t := v.(type) {
	case string:
		s, ok := want.(string)
		return ok && strings.Contains(t, s)
	case []interface{}:
		for _, elem := range t {
			if fmt.Sprint(elem) == fmt.Sprint(want) {
				return true
			}
		}
		return false
	default:
		return fmt.Sprint(v) == fmt.Sprint(want)
	}
}

func payloadRegex(payload model.Payload, path, pattern string) bool {
	v, found := payloadpath.Get(payload, path)
	if !found {
		return false
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		log.WithComponent("filter").Debug().Str("pattern", pattern).Err(err).Msg("invalid payload_regex pattern ignored")
		return true
	}
	return re.MatchString(s)
}

func payloadNumeric(payload model.Payload, path, op string, want interface{}) bool {
	v, found := payloadpath.Get(payload, path)
	if !found {
		return false
	}
	a, aok := asFloat(v)
	b, bok := asFloat(want)
	if !aok || !bok {
		return false
	}
	switch op {
	case "=", "==":
		return a == b
	case "!=", "<>":
		return a != b
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	default:
		return false
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func stringConfig(config map[string]interface{}, key string) string {
	if v, ok := config[key].(string); ok {
		return v
	}
	return ""
}

func stringSliceConfig(config map[string]interface{}, key string) []string {
	raw, ok := config[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
