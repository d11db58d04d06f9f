package resolver

import (
	"testing"

	"github.com/aaviondb/aaviondb/pkg/brain"
	"github.com/aaviondb/aaviondb/pkg/events"
	"github.com/aaviondb/aaviondb/pkg/model"
	"github.com/aaviondb/aaviondb/pkg/pathlocator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *brain.Repository {
	t.Helper()
	loc, err := pathlocator.New(t.TempDir())
	require.NoError(t, err)
	repo := brain.New(loc, events.New())
	require.NoError(t, repo.EnsureSystemBrain())
	require.NoError(t, repo.EnsureActiveBrain("default"))
	return repo
}

func TestPlaceholderSubstitution(t *testing.T) {
	ctx := &Context{Project: "storyverse", Entity: "hero", UID: "storyverse.hero", Version: 3, Params: map[string]string{"name": "Aria"}}
	assert.Equal(t, "storyverse/hero v3 Aria", ctx.substitutePlaceholders("${project}/${entity} v${version} ${param.name}"))
}

func TestRefResolvesScalarFromTargetPayload(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.CreateProject("storyverse", "Story Verse", "")
	require.NoError(t, err)
	_, err = repo.SaveEntity("storyverse", "hero", model.Payload{"name": "Aria"}, nil, brain.SaveOptions{})
	require.NoError(t, err)

	e := New(repo)
	ctx := &Context{Project: "storyverse", Entity: "narrator", UID: "storyverse.narrator"}
	out := e.ResolvePayload(ctx, model.Payload{"line": "[ref @storyverse.hero name]"})
	assert.Equal(t, "[ref @storyverse.hero name]Aria", out["line"])
}

func TestRefDetectsCycle(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.CreateProject("storyverse", "Story Verse", "")
	require.NoError(t, err)
	_, err = repo.SaveEntity("storyverse", "a", model.Payload{"link": "[ref @storyverse.b link]"}, nil, brain.SaveOptions{})
	require.NoError(t, err)
	_, err = repo.SaveEntity("storyverse", "b", model.Payload{"link": "[ref @storyverse.a link]"}, nil, brain.SaveOptions{})
	require.NoError(t, err)

	e := New(repo)
	ctx := &Context{Project: "storyverse", Entity: "a", UID: "storyverse.a"}
	out := e.ResolvePayload(ctx, model.Payload{"link": "[ref @storyverse.b link]"})
	assert.Contains(t, out["link"], "<cycle>")
}

func TestRefUnresolvedOnMissingEntity(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.CreateProject("storyverse", "Story Verse", "")
	require.NoError(t, err)

	e := New(repo)
	ctx := &Context{Project: "storyverse", Entity: "narrator"}
	out := e.ResolvePayload(ctx, model.Payload{"line": "[ref @storyverse.ghost name]"})
	assert.Contains(t, out["line"], "<unresolved:")
}

func TestStripPayloadRoundTrip(t *testing.T) {
	payload := model.Payload{"line": "[ref @storyverse.hero name]"}
	resolved := model.Payload{"line": "[ref @storyverse.hero name]Aria"}
	assert.Equal(t, StripPayload(payload), StripPayload(resolved))
}

func TestQueryFiltersByWhereClause(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.CreateProject("storyverse", "Story Verse", "")
	require.NoError(t, err)
	_, err = repo.SaveEntity("storyverse", "hero", model.Payload{"role": "pilot"}, nil, brain.SaveOptions{})
	require.NoError(t, err)
	_, err = repo.SaveEntity("storyverse", "sage", model.Payload{"role": "scholar"}, nil, brain.SaveOptions{})
	require.NoError(t, err)

	e := New(repo)
	ctx := &Context{Project: "storyverse", Entity: "narrator"}
	out := e.ResolvePayload(ctx, model.Payload{
		"list": "[query where=role==pilot | select=role | format=plain]",
	})
	assert.Contains(t, out["list"], "hero")
}
