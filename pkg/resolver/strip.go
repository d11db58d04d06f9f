package resolver

import (
	"strings"

	"github.com/aaviondb/aaviondb/pkg/model"
)

// StripPayload returns a deep copy of payload with every resolved
// shortcode rendering removed, leaving only the original marker in its
// normalized form. stripPayload(resolvePayload(p)) == stripPayload(p)
// (spec.md §8.6).
func StripPayload(payload model.Payload) model.Payload {
	return stripValue(payload).(model.Payload)
}

func stripValue(v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		return StripString(t)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = stripValue(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = stripValue(val)
		}
		return out
	default:
		return v
	}
}

// StripString removes any text following a shortcode marker up to the
// next marker (or end of string), restoring the marker to its
// normalized "[tag attrs]" form.
func StripString(s string) string {
	if !strings.Contains(s, "[ref") && !strings.Contains(s, "[query") {
		return s
	}
	var out strings.Builder
	pos := 0
	for {
		m, ok := findMarker(s, pos)
		if !ok {
			out.WriteString(s[pos:])
			break
		}
		out.WriteString(s[pos:m.start])
		out.WriteString(m.normalize())

		next, ok := findMarker(s, m.end)
		if !ok {
			break
		}
		pos = next.start
	}
	return out.String()
}
