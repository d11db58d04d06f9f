package commands

import (
	"testing"

	"github.com/aaviondb/aaviondb/pkg/auth"
	"github.com/aaviondb/aaviondb/pkg/brain"
	"github.com/aaviondb/aaviondb/pkg/cache"
	"github.com/aaviondb/aaviondb/pkg/command"
	"github.com/aaviondb/aaviondb/pkg/events"
	"github.com/aaviondb/aaviondb/pkg/export"
	"github.com/aaviondb/aaviondb/pkg/log"
	"github.com/aaviondb/aaviondb/pkg/model"
	"github.com/aaviondb/aaviondb/pkg/pathlocator"
	"github.com/aaviondb/aaviondb/pkg/resolver"
	"github.com/aaviondb/aaviondb/pkg/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDeps(t *testing.T) (Dependencies, *brain.Repository) {
	t.Helper()
	loc, err := pathlocator.New(t.TempDir())
	require.NoError(t, err)
	bus := events.New()
	repo := brain.New(loc, bus)
	require.NoError(t, repo.EnsureSystemBrain())
	require.NoError(t, repo.EnsureActiveBrain("default"))

	res := resolver.New(repo)
	c := cache.New(t.TempDir())
	deps := Dependencies{
		Repo:         repo,
		Registry:     command.NewRegistry(bus),
		Bus:          bus,
		Resolver:     res,
		Export:       export.New(repo, res),
		Auth:         auth.New(repo),
		Security:     security.New(repo, c),
		APIKeyLength: 16,
		Logger:       log.WithComponent("commands_test"),
	}
	Register(deps)
	return deps, repo
}

func TestSaveThenShowRoundTrips(t *testing.T) {
	deps, repo := newTestDeps(t)
	_, err := repo.CreateProject("storyverse", "Story Verse", "")
	require.NoError(t, err)

	env := deps.Registry.Dispatch("save", map[string]interface{}{
		"project": "storyverse",
		"entity":  "hero",
		"payload": map[string]interface{}{"name": "Aria", "role": "Pilot"},
	})
	require.Equal(t, "ok", env.Status)
	record := env.Data["record"].(map[string]interface{})
	assert.Equal(t, "1", record["version"])

	env = deps.Registry.Dispatch("show", map[string]interface{}{
		"project": "storyverse",
		"entity":  "hero",
	})
	require.Equal(t, "ok", env.Status)
	record = env.Data["record"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"name": "Aria", "role": "Pilot"}, record["payload"])
}

func TestSaveUnknownProjectReturnsErrorEnvelope(t *testing.T) {
	deps, _ := newTestDeps(t)
	env := deps.Registry.Dispatch("save", map[string]interface{}{
		"project": "nope",
		"entity":  "hero",
		"payload": map[string]interface{}{"name": "Aria"},
	})
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "not_found", env.Meta["reason"])
}

func TestProjectCreateListDelete(t *testing.T) {
	deps, _ := newTestDeps(t)

	env := deps.Registry.Dispatch("project.create", map[string]interface{}{"slug": "storyverse", "title": "Story Verse"})
	require.Equal(t, "ok", env.Status)

	env = deps.Registry.Dispatch("project.list", nil)
	require.Equal(t, "ok", env.Status)
	assert.Len(t, env.Data["projects"], 1)

	env = deps.Registry.Dispatch("project.delete", map[string]interface{}{"slug": "storyverse"})
	require.Equal(t, "ok", env.Status)

	env = deps.Registry.Dispatch("project.list", nil)
	assert.Len(t, env.Data["projects"], 0)
}

func TestAuthTokenCreateRevoke(t *testing.T) {
	deps, _ := newTestDeps(t)

	env := deps.Registry.Dispatch("auth.token.create", map[string]interface{}{"scope": "ALL"})
	require.Equal(t, "ok", env.Status)
	id := env.Data["id"].(string)
	assert.NotEmpty(t, env.Data["token"])

	env = deps.Registry.Dispatch("auth.token.revoke", map[string]interface{}{"id": id})
	require.Equal(t, "ok", env.Status)
}

func TestQueryFiltersBySlug(t *testing.T) {
	deps, repo := newTestDeps(t)
	_, err := repo.CreateProject("storyverse", "Story Verse", "")
	require.NoError(t, err)
	_, err = repo.SaveEntity("storyverse", "hero", map[string]interface{}{"name": "Aria"}, nil, brain.SaveOptions{})
	require.NoError(t, err)
	_, err = repo.SaveEntity("storyverse", "villain", map[string]interface{}{"name": "Korr"}, nil, brain.SaveOptions{})
	require.NoError(t, err)

	env := deps.Registry.Dispatch("query", map[string]interface{}{
		"project": "storyverse",
		"entity_filters": []interface{}{
			map[string]interface{}{"type": "slug_equals", "config": map[string]interface{}{"value": "hero"}},
		},
	})
	require.Equal(t, "ok", env.Status)
	assert.Equal(t, []string{"hero"}, env.Data["slugs"])
}

func TestCronRunsDueScheduledAction(t *testing.T) {
	deps, repo := newTestDeps(t)
	var ran bool
	deps.Registry.Register("noop", func(map[string]interface{}) (map[string]interface{}, error) {
		ran = true
		return nil, nil
	})
	require.NoError(t, repo.SetSchedulerTask(&model.SchedulerTask{
		Slug: "ping", Action: "noop", Active: true, IntervalSecs: 0,
	}))

	env := deps.Registry.Dispatch("cron", nil)
	require.Equal(t, "ok", env.Status)
	assert.True(t, ran)
	assert.Contains(t, env.Data["ran"], "ping")
}

func TestHelpListsEveryCatalogEntry(t *testing.T) {
	deps, _ := newTestDeps(t)
	env := deps.Registry.Dispatch("help", nil)
	require.Equal(t, "ok", env.Status)
	commands := env.Data["commands"].(map[string]interface{})
	assert.Contains(t, commands, "save")
	assert.Contains(t, commands, "cron")
}
