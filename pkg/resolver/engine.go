package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aaviondb/aaviondb/pkg/brain"
	"github.com/aaviondb/aaviondb/pkg/model"
	"github.com/aaviondb/aaviondb/pkg/payloadpath"
)

const defaultMaxDepth = 6

// frame is one entry of the cycle-detection stack carried through
// recursive shortcode resolution (spec.md §4.11).
type frame struct {
	uid  string
	path string
}

// Engine expands "[ref ...]" / "[query ...]" shortcodes against a
// BrainRepository.
type Engine struct {
	repo     *brain.Repository
	maxDepth int
}

// New constructs an Engine with the default recursion depth (6).
func New(repo *brain.Repository) *Engine {
	return &Engine{repo: repo, maxDepth: defaultMaxDepth}
}

// WithMaxDepth overrides the default shortcode recursion depth.
func (e *Engine) WithMaxDepth(depth int) *Engine {
	e.maxDepth = depth
	return e
}

// ResolvePayload returns a deep copy of payload with every shortcode
// in every string field expanded.
func (e *Engine) ResolvePayload(ctx *Context, payload model.Payload) model.Payload {
	return resolveValue(e, ctx, payload, nil, 0).(model.Payload)
}

func resolveValue(e *Engine, ctx *Context, v interface{}, stack []frame, depth int) interface{} {
	switch t := v.(type) {
	case string:
		return e.resolveString(ctx, t, stack, depth)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = resolveValue(e, ctx, val, stack, depth)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = resolveValue(e, ctx, val, stack, depth)
		}
		return out
	default:
		return v
	}
}

func (e *Engine) resolveString(ctx *Context, s string, stack []frame, depth int) string {
	var out strings.Builder
	pos := 0
	for {
		m, ok := findMarker(s, pos)
		if !ok {
			out.WriteString(s[pos:])
			break
		}
		out.WriteString(s[pos:m.start])
		out.WriteString(s[m.start:m.end])
		if depth >= e.maxDepth {
			pos = m.end
			continue
		}
		out.WriteString(e.render(ctx, m, stack, depth))
		pos = m.end
	}
	return out.String()
}

func (e *Engine) render(ctx *Context, m marker, stack []frame, depth int) string {
	attrs := ctx.substitutePlaceholders(m.attrs)
	switch m.tag {
	case "ref":
		return e.renderRef(ctx, attrs, stack, depth)
	case "query":
		return e.renderQuery(ctx, attrs)
	default:
		return ""
	}
}

func unresolved(format string, args ...interface{}) string {
	return "<unresolved: " + fmt.Sprintf(format, args...) + ">"
}

// renderRef resolves "[ref @project.entity[@version|#hash] path | opt=value]".
func (e *Engine) renderRef(ctx *Context, attrs string, stack []frame, depth int) string {
	leading, _ := splitOptions(attrs)
	fields := strings.Fields(leading)
	if len(fields) == 0 {
		return unresolved("ref requires a target")
	}
	target := fields[0]
	path := ""
	if len(fields) > 1 {
		path = fields[1]
	}

	project, entity, version, err := parseRefTarget(target)
	if err != nil {
		return unresolved("%s", err.Error())
	}
	if project == "" {
		project = ctx.Project
	}

	uid := UIDFor(project, entity)
	for _, f := range stack {
		if f.uid == uid && f.path == path {
			return "<cycle>"
		}
	}

	v, err := e.repo.GetEntityVersion(project, entity, version)
	if err != nil {
		return unresolved("%s", err.Error())
	}

	value, found := payloadpath.Get(v.Payload, path)
	if !found {
		return unresolved("no such path %q in %s", path, uid)
	}

	if s, ok := value.(string); ok {
		nextStack := append(append([]frame{}, stack...), frame{uid: uid, path: path})
		return e.resolveString(&Context{
			Project: project, Entity: entity, UID: uid,
			Version: v.Version, Params: ctx.Params, Payload: v.Payload,
		}, s, nextStack, depth+1)
	}
	return formatRefValue(value)
}

func parseRefTarget(target string) (project, entity, version string, err error) {
	target = strings.TrimPrefix(target, "@")
	base := target
	for i := 0; i < len(target); i++ {
		if target[i] == '@' || target[i] == '#' {
			base = target[:i]
			version = target[i:]
			break
		}
	}
	dot := strings.IndexByte(base, '.')
	if dot < 0 {
		return "", "", "", fmt.Errorf("malformed ref target %q", target)
	}
	project = base[:dot]
	entity = base[dot+1:]
	if strings.HasPrefix(version, "@") {
		version = strings.TrimPrefix(version, "@")
	}
	return project, entity, version, nil
}

func formatRefValue(v interface{}) string {
	switch t := v.(type) {
	case []interface{}:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = formatRefValue(e)
		}
		return strings.Join(parts, ", ")
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(t))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, formatRefValue(t[k])))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}
