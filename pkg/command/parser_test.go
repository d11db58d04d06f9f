package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitAction(t *testing.T) {
	action, remainder := splitAction("  SAVE storyverse hero")
	assert.Equal(t, "save", action)
	assert.Equal(t, "storyverse hero", remainder)
}

func TestParseExtractsEmbeddedJSONPayload(t *testing.T) {
	p := NewParser(nil, nil)
	ctx, err := p.Parse(`save storyverse hero {"name":"Aria","role":"Pilot"}`)
	require.NoError(t, err)

	assert.Equal(t, "save", ctx.Action)
	assert.Equal(t, []string{"storyverse", "hero"}, ctx.Tokens)
	assert.Equal(t, map[string]interface{}{"name": "Aria", "role": "Pilot"}, ctx.Payload)
}

func TestTokenizeHonorsQuotesAndEscapes(t *testing.T) {
	tokens := tokenize(`title="Story Verse" note='it\'s fine'`)
	assert.Equal(t, []string{`title=Story Verse`, `note=it's fine`}, tokens)
}

func TestParseHandlerCanRewriteAction(t *testing.T) {
	p := NewParser(nil, nil)
	seen := []string{}
	p.On("alias", 0, func(ctx *Context) bool {
		seen = append(seen, ctx.Action)
		ctx.Action = "save"
		return false
	})
	p.On("save", 0, func(ctx *Context) bool {
		seen = append(seen, ctx.Action)
		return false
	})

	ctx, err := p.Parse("alias storyverse hero")
	require.NoError(t, err)
	assert.Equal(t, "save", ctx.Action)
	assert.Equal(t, []string{"alias", "save"}, seen)
}

func TestParseNoPayloadReturnsNilPayload(t *testing.T) {
	p := NewParser(nil, nil)
	ctx, err := p.Parse("list storyverse")
	require.NoError(t, err)
	assert.Nil(t, ctx.Payload)
	assert.Equal(t, []string{"storyverse"}, ctx.Tokens)
}

func TestParseRunsRegistryParserHandlersForAction(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register("save", func(map[string]interface{}) (map[string]interface{}, error) { return nil, nil })
	reg.RegisterMeta("save", func(map[string]interface{}) (map[string]interface{}, error) { return nil, nil }, ActionMeta{
		ParserHandlers: []Handler{func(ctx *Context) bool {
			ctx.Parameters["project"] = ctx.Tokens[0]
			return false
		}},
	})

	p := NewParser(nil, reg)
	ctx, err := p.Parse("save storyverse")
	require.NoError(t, err)
	assert.Equal(t, "storyverse", ctx.Parameters["project"])
}
