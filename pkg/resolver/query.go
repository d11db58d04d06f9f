package resolver

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/aaviondb/aaviondb/pkg/model"
	"github.com/aaviondb/aaviondb/pkg/payloadpath"
)

type queryMatch struct {
	project string
	entity  string
	payload model.Payload
}

// renderQuery resolves "[query project=… | where=… | select=… |
// sort=… | limit=… | offset=… | format=… | template=… | separator=…]".
func (e *Engine) renderQuery(ctx *Context, attrs string) string {
	_, opts := splitOptions(attrs)

	projects, err := e.queryProjects(ctx, opts["project"])
	if err != nil {
		return unresolved("%s", err.Error())
	}

	var matches []queryMatch
	for _, proj := range projects {
		entities, err := e.repo.ListEntities(proj)
		if err != nil {
			continue
		}
		for _, ent := range entities {
			v := ent.ActiveVersionOf()
			if v == nil {
				continue
			}
			if opts["where"] != "" && !evaluateWhere(v.Payload, opts["where"]) {
				continue
			}
			matches = append(matches, queryMatch{project: proj, entity: ent.Slug, payload: v.Payload})
		}
	}

	if sortKey := opts["sort"]; sortKey != "" {
		sortMatches(matches, sortKey)
	}
	matches = sliceMatches(matches, opts["offset"], opts["limit"])

	if paths := opts["select"]; paths != "" {
		fields := strings.Split(paths, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		for i, m := range matches {
			matches[i].payload = payloadpath.Whitelist(m.payload, fields)
		}
	}

	return renderMatches(e, ctx, matches, opts)
}

func (e *Engine) queryProjects(ctx *Context, spec string) ([]string, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return []string{ctx.Project}, nil
	}
	if spec == "*" {
		projects, err := e.repo.ListProjects()
		if err != nil {
			return nil, err
		}
		out := make([]string, len(projects))
		for i, p := range projects {
			out[i] = p.Slug
		}
		return out, nil
	}
	parts := strings.Split(spec, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

// evaluateWhere evaluates a conjunctive ("&&"-separated) clause of
// "path op value" conditions against payload, per spec.md §4.11's
// operator list.
func evaluateWhere(payload model.Payload, where string) bool {
	for _, clause := range strings.Split(where, "&&") {
		if !evaluateCondition(payload, strings.TrimSpace(clause)) {
			return false
		}
	}
	return true
}

var whereOperators = []string{">=", "<=", "!=", "<>", "==", "!contains", "contains", "not in", "in", "matches", "regex", "~", "=", "<", ">"}

func evaluateCondition(payload model.Payload, clause string) bool {
	for _, op := range whereOperators {
		idx := strings.Index(clause, op)
		if idx < 0 {
			continue
		}
		path := strings.TrimSpace(clause[:idx])
		want := strings.TrimSpace(clause[idx+len(op):])
		want = strings.Trim(want, `"'`)
		v, found := payloadpath.Get(payload, path)
		return applyOperator(op, v, found, want)
	}
	return true
}

func applyOperator(op string, v interface{}, found bool, want string) bool {
	switch op {
	case "=", "==":
		return found && valueEquals(v, want)
	case "!=", "<>":
		return !found || !valueEquals(v, want)
	case "<", "<=", ">", ">=":
		a, aok := asFloat(v)
		b, bok := asFloat(want)
		if !aok || !bok {
			return false
		}
		switch op {
		case "<":
			return a < b
		case "<=":
			return a <= b
		case ">":
			return a > b
		case ">=":
			return a >= b
		}
	case "contains":
		s, ok := v.(string)
		return ok && strings.Contains(s, want)
	case "!contains":
		s, ok := v.(string)
		return !ok || !strings.Contains(s, want)
	case "in":
		return stringInCSV(want, v)
	case "not in":
		return !stringInCSV(want, v)
	case "~", "matches", "regex":
		s, ok := v.(string)
		if !ok {
			return false
		}
		re, err := regexp.Compile(want)
		return err == nil && re.MatchString(s)
	}
	return false
}

func stringInCSV(csv string, v interface{}) bool {
	target := jsonString(v)
	for _, part := range strings.Split(csv, ",") {
		if strings.TrimSpace(part) == target {
			return true
		}
	}
	return false
}

func valueEquals(v interface{}, want string) bool {
	return jsonString(v) == want
}

func jsonString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if f, ok := asFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	raw, _ := json.Marshal(v)
	return string(raw)
}

func asFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
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

func sortMatches(matches []queryMatch, key string) {
	desc := strings.HasPrefix(key, "-")
	path := strings.TrimPrefix(key, "-")
	sort.SliceStable(matches, func(i, j int) bool {
		a, _ := payloadpath.Get(matches[i].payload, path)
		b, _ := payloadpath.Get(matches[j].payload, path)
		less := jsonString(a) < jsonString(b)
		if af, aok := asFloat(a); aok {
			if bf, bok := asFloat(b); bok {
				less = af < bf
			}
		}
		if desc {
			return !less
		}
		return less
	})
}

func sliceMatches(matches []queryMatch, offsetStr, limitStr string) []queryMatch {
	offset, _ := strconv.Atoi(offsetStr)
	if offset < 0 {
		offset = 0
	}
	if offset > len(matches) {
		offset = len(matches)
	}
	matches = matches[offset:]

	if limitStr == "" {
		return matches
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 0 {
		return matches
	}
	if limit > len(matches) {
		limit = len(matches)
	}
	return matches[:limit]
}

func renderMatches(e *Engine, ctx *Context, matches []queryMatch, opts map[string]string) string {
	separator := opts["separator"]
	if separator == "" {
		separator = "\n"
	}
	format := opts["format"]
	if format == "" {
		format = "json"
	}

	if format == "json" && opts["template"] == "" {
		raw, err := json.Marshal(matchPayloads(matches))
		if err != nil {
			return unresolved("%s", err.Error())
		}
		return string(raw)
	}

	rendered := make([]string, 0, len(matches))
	for _, m := range matches {
		if tmpl := opts["template"]; tmpl != "" {
			itemCtx := &Context{
				Project: m.project, Entity: m.entity, UID: UIDFor(m.project, m.entity),
				Params: ctx.Params, Payload: m.payload,
			}
			rendered = append(rendered, itemCtx.substitutePlaceholders(tmpl))
			continue
		}
		switch format {
		case "markdown":
			rendered = append(rendered, "- "+UIDFor(m.project, m.entity))
		case "plain", "raw":
			rendered = append(rendered, UIDFor(m.project, m.entity))
		default:
			raw, _ := json.Marshal(m.payload)
			rendered = append(rendered, string(raw))
		}
	}
	return strings.Join(rendered, separator)
}

func matchPayloads(matches []queryMatch) []model.Payload {
	out := make([]model.Payload, len(matches))
	for i, m := range matches {
		out[i] = m.payload
	}
	return out
}
