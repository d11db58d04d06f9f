package codec

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Decode parses raw JSON bytes into the tagged-variant representation
// used throughout AavionDB (nil | bool | json.Number | string |
// []interface{} | map[string]interface{}), preserving number precision
// instead of collapsing everything to float64.
func Decode(raw []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("codec: decode: %w", err)
	}
	return v, nil
}

// Canonical serializes value into canonical JSON: object keys sorted
// ascending, array order preserved, no extraneous whitespace, no
// escaped forward slashes, and non-ASCII characters emitted as raw
// UTF-8 rather than \uXXXX escapes. Sorting is performed explicitly by
// this function rather than relying on any library's map-iteration
// order, per spec.md §9 ("Hash determinism").
func Canonical(value interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, value); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CanonicalFromJSON re-serializes raw JSON bytes into canonical form.
func CanonicalFromJSON(raw []byte) ([]byte, error) {
	v, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return Canonical(v)
}

// Hash returns the lowercase hex SHA-256 of value's canonical form.
func Hash(value interface{}) (string, error) {
	canon, err := Canonical(value)
	if err != nil {
		return "", err
	}
	return HashBytes(canon), nil
}

// HashBytes returns the lowercase hex SHA-256 of already-canonical bytes.
func HashBytes(canon []byte) string {
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:])
}

func encode(buf *bytes.Buffer, value interface{}) error {
	switch v := value.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if v {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case json.Number:
		buf.WriteString(v.String())
	case float64:
		buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	case int:
		buf.WriteString(strconv.Itoa(v))
	case int64:
		buf.WriteString(strconv.FormatInt(v, 10))
	case string:
		encodeString(buf, v)
	case []interface{}:
		buf.WriteByte('[')
		for i, elem := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encode(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			encodeString(buf, k)
			buf.WriteByte(':')
			if err := encode(buf, v[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("codec: unsupported value type %T", value)
	}
	return nil
}

// encodeString writes a JSON string literal escaping only what JSON
// requires (quote, backslash, control characters) — never a forward
// slash and never non-ASCII runes, which are written as raw UTF-8.
func encodeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}
