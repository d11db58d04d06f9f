package payloadpath

import (
	"strconv"
	"strings"
)

// segment is one hop of a parsed path: a map key, optionally followed
// by one or more array indices (e.g. "items[0][1]" -> key "items",
// indices [0, 1]).
type segment struct {
	key     string
	indices []int
}

// Parse splits a dotted path with optional "[n]" suffixes into
// segments. An empty path yields no segments (meaning "the value
// itself").
func Parse(path string) []segment {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, ".")
	segs := make([]segment, 0, len(parts))
	for _, p := range parts {
		key := p
		var indices []int
		for {
			start := strings.IndexByte(key, '[')
			if start < 0 {
				break
			}
			end := strings.IndexByte(key[start:], ']')
			if end < 0 {
				break
			}
			end += start
			if n, err := strconv.Atoi(key[start+1 : end]); err == nil {
				indices = append(indices, n)
			}
			key = key[:start] + key[end+1:]
		}
		segs = append(segs, segment{key: key, indices: indices})
	}
	return segs
}

// Get resolves path against payload, returning the value and whether
// it was found.
func Get(payload interface{}, path string) (interface{}, bool) {
	cur := payload
	for _, seg := range Parse(path) {
		if seg.key != "" {
			m, ok := cur.(map[string]interface{})
			if !ok {
				return nil, false
			}
			cur, ok = m[seg.key]
			if !ok {
				return nil, false
			}
		}
		for _, idx := range seg.indices {
			arr, ok := cur.([]interface{})
			if !ok || idx < 0 || idx >= len(arr) {
				return nil, false
			}
			cur = arr[idx]
		}
	}
	return cur, true
}

// Whitelist returns a deep copy of payload retaining only the values
// reachable by paths, projecting intermediate maps along the way
// (spec.md §4.12, transform.whitelist).
func Whitelist(payload map[string]interface{}, paths []string) map[string]interface{} {
	out := map[string]interface{}{}
	for _, path := range paths {
		v, ok := Get(payload, path)
		if !ok {
			continue
		}
		setDeep(out, Parse(path), deepCopyValue(v))
	}
	return out
}

// Blacklist returns a deep copy of payload with every path in paths
// deleted (spec.md §4.12, transform.blacklist).
func Blacklist(payload map[string]interface{}, paths []string) map[string]interface{} {
	out := deepCopyMap(payload)
	for _, path := range paths {
		deleteDeep(out, Parse(path))
	}
	return out
}

func setDeep(dst map[string]interface{}, segs []segment, value interface{}) {
	if len(segs) == 0 {
		return
	}
	// Array indices within a whitelist path are projected as the leaf
	// value itself; only the final map key nests further.
	last := segs[len(segs)-1]
	cur := dst
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg.key].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			cur[seg.key] = next
		}
		cur = next
	}
	cur[last.key] = value
}

func deleteDeep(cur map[string]interface{}, segs []segment) {
	if len(segs) == 0 {
		return
	}
	last := segs[len(segs)-1]
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg.key].(map[string]interface{})
		if !ok {
			return
		}
		cur = next
	}
	delete(cur, last.key)
}

func deepCopyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return deepCopyMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		return v
	}
}
