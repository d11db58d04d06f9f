package filter

import (
	"testing"

	"github.com/aaviondb/aaviondb/pkg/model"
	"github.com/stretchr/testify/assert"
)

func entity(slug, parent string, payload model.Payload) *model.Entity {
	return &model.Entity{
		Slug:          slug,
		Parent:        parent,
		ActiveVersion: 1,
		Status:        model.EntityActive,
		Versions: []*model.Version{
			{Version: 1, Status: model.VersionActive, Payload: payload},
		},
	}
}

func TestSlugEquals(t *testing.T) {
	entities := map[string]*model.Entity{
		"hero": entity("hero", "", nil),
		"sage": entity("sage", "", nil),
	}
	res := Apply(entities, []Definition{{Type: "slug_equals", Config: map[string]interface{}{"value": "hero"}}})
	assert.Equal(t, []string{"hero"}, res.Slugs)
}

func TestSlugIn(t *testing.T) {
	entities := map[string]*model.Entity{
		"hero": entity("hero", "", nil),
		"sage": entity("sage", "", nil),
		"rook": entity("rook", "", nil),
	}
	res := Apply(entities, []Definition{{Type: "slug_in", Config: map[string]interface{}{
		"values": []interface{}{"hero", "rook"},
	}}})
	assert.Equal(t, []string{"hero", "rook"}, res.Slugs)
}

func TestPayloadContainsString(t *testing.T) {
	entities := map[string]*model.Entity{
		"hero": entity("hero", "", model.Payload{"bio": "a daring pilot"}),
		"sage": entity("sage", "", model.Payload{"bio": "a quiet scholar"}),
	}
	res := Apply(entities, []Definition{{Type: "payload_contains", Config: map[string]interface{}{
		"path": "bio", "value": "pilot",
	}}})
	assert.Equal(t, []string{"hero"}, res.Slugs)
}

func TestPayloadNumericComparison(t *testing.T) {
	entities := map[string]*model.Entity{
		"a": entity("a", "", model.Payload{"rank": float64(3)}),
		"b": entity("b", "", model.Payload{"rank": float64(7)}),
	}
	res := Apply(entities, []Definition{{Type: "payload_numeric", Config: map[string]interface{}{
		"path": "rank", "op": ">=", "value": float64(5),
	}}})
	assert.Equal(t, []string{"b"}, res.Slugs)
}

func TestPayloadMissing(t *testing.T) {
	entities := map[string]*model.Entity{
		"a": entity("a", "", model.Payload{"rank": float64(3)}),
		"b": entity("b", "", model.Payload{}),
	}
	res := Apply(entities, []Definition{{Type: "payload_missing", Config: map[string]interface{}{"path": "rank"}}})
	assert.Equal(t, []string{"b"}, res.Slugs)
}

func TestUnknownFilterTypeIsIgnored(t *testing.T) {
	entities := map[string]*model.Entity{
		"a": entity("a", "", nil),
	}
	res := Apply(entities, []Definition{{Type: "something_new"}})
	assert.Equal(t, []string{"a"}, res.Slugs)
}

func TestIncludeReferencesIsADirectiveNotAPredicate(t *testing.T) {
	entities := map[string]*model.Entity{
		"a": entity("a", "", nil),
	}
	res := Apply(entities, []Definition{{Type: "include_references", Config: map[string]interface{}{"depth": float64(2)}}})
	assert.Equal(t, []string{"a"}, res.Slugs)
	assert.Contains(t, res.Directives, "include_references")
}

func TestCustomPlaceholderUsesRegisteredPredicate(t *testing.T) {
	RegisterCustom("even_rank", func(e *model.Entity, payload model.Payload, config map[string]interface{}) bool {
		rank, _ := payload["rank"].(float64)
		return int(rank)%2 == 0
	})
	entities := map[string]*model.Entity{
		"a": entity("a", "", model.Payload{"rank": float64(2)}),
		"b": entity("b", "", model.Payload{"rank": float64(3)}),
	}
	res := Apply(entities, []Definition{{Type: "custom_placeholder", Config: map[string]interface{}{"name": "even_rank"}}})
	assert.Equal(t, []string{"a"}, res.Slugs)
}
