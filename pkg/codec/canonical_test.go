package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalSortsKeys(t *testing.T) {
	a, err := Canonical(map[string]interface{}{"b": 1, "a": 2})
	require.NoError(t, err)
	assert.Equal(t, `{"a":2,"b":1}`, string(a))
}

func TestCanonicalNoSlashEscaping(t *testing.T) {
	out, err := Canonical(map[string]interface{}{"url": "a/b"})
	require.NoError(t, err)
	assert.Equal(t, `{"url":"a/b"}`, string(out))
}

func TestCanonicalNoUnicodeEscaping(t *testing.T) {
	out, err := Canonical(map[string]interface{}{"name": "Ariá"})
	require.NoError(t, err)
	assert.Equal(t, "{\"name\":\"Ariá\"}", string(out))
}

func TestCanonicalIdempotent(t *testing.T) {
	payload := map[string]interface{}{"name": "Aria", "role": "Pilot", "tags": []interface{}{"a", "b"}}
	first, err := Canonical(payload)
	require.NoError(t, err)

	decoded, err := Decode(first)
	require.NoError(t, err)

	second, err := Canonical(decoded)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestCanonicalFromJSONPreservesNumberPrecision(t *testing.T) {
	out, err := CanonicalFromJSON([]byte(`{"n": 9007199254740993}`))
	require.NoError(t, err)
	assert.Equal(t, `{"n":9007199254740993}`, string(out))
}

func TestHashMatchesExpectedDigest(t *testing.T) {
	h, err := Hash(map[string]interface{}{"name": "Aria", "role": "Pilot"})
	require.NoError(t, err)
	assert.Len(t, h, 64)

	h2, err := Hash(map[string]interface{}{"role": "Pilot", "name": "Aria"})
	require.NoError(t, err)
	assert.Equal(t, h, h2)
}
