package resolver

import (
	"fmt"
	"strings"

	"github.com/aaviondb/aaviondb/pkg/model"
	"github.com/aaviondb/aaviondb/pkg/payloadpath"
)

// Context carries the placeholder values substituted into shortcode
// attributes and into "${...}" payload placeholders (spec.md §4.11).
type Context struct {
	Project string
	Entity  string
	UID     string
	Version int
	Params  map[string]string
	Payload model.Payload
}

// UIDFor builds the canonical "project.entity" identifier used as the
// UID placeholder and as the cycle-detection key.
func UIDFor(project, entity string) string {
	return project + "." + entity
}

func (c *Context) substitutePlaceholders(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	var out strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '$' && i+1 < len(s) && s[i+1] == '{' {
			end := strings.IndexByte(s[i+2:], '}')
			if end < 0 {
				out.WriteByte(s[i])
				continue
			}
			end += i + 2
			name := s[i+2 : end]
			out.WriteString(c.resolvePlaceholder(name))
			i = end
			continue
		}
		out.WriteByte(s[i])
	}
	return out.String()
}

func (c *Context) resolvePlaceholder(name string) string {
	switch {
	case name == "project":
		return c.Project
	case name == "entity":
		return c.Entity
	case name == "uid":
		return c.UID
	case name == "version":
		return fmt.Sprint(c.Version)
	case strings.HasPrefix(name, "param."):
		return c.Params[strings.TrimPrefix(name, "param.")]
	case strings.HasPrefix(name, "payload."):
		v, ok := payloadpath.Get(c.Payload, strings.TrimPrefix(name, "payload."))
		if !ok {
			return ""
		}
		return fmt.Sprint(v)
	default:
		return ""
	}
}
