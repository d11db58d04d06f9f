package export

import (
	"testing"

	"github.com/aaviondb/aaviondb/pkg/brain"
	"github.com/aaviondb/aaviondb/pkg/events"
	"github.com/aaviondb/aaviondb/pkg/filter"
	"github.com/aaviondb/aaviondb/pkg/model"
	"github.com/aaviondb/aaviondb/pkg/pathlocator"
	"github.com/aaviondb/aaviondb/pkg/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*Engine, *brain.Repository) {
	t.Helper()
	loc, err := pathlocator.New(t.TempDir())
	require.NoError(t, err)
	repo := brain.New(loc, events.New())
	require.NoError(t, repo.EnsureSystemBrain())
	require.NoError(t, repo.EnsureActiveBrain("default"))
	return New(repo, resolver.New(repo)), repo
}

func TestExportWildcardScopeIsBrain(t *testing.T) {
	e, repo := newTestEngine(t)
	_, err := repo.CreateProject("storyverse", "Story Verse", "")
	require.NoError(t, err)
	_, err = repo.SaveEntity("storyverse", "hero", model.Payload{"name": "Aria"}, nil, brain.SaveOptions{})
	require.NoError(t, err)

	bundle, err := e.Export(Request{ProjectTargets: []string{"*"}})
	require.NoError(t, err)
	assert.Equal(t, "brain", bundle.Scope)
	assert.Equal(t, 1, bundle.Stats.ProjectCount)
	assert.Equal(t, 1, bundle.Stats.EntityCount)
}

func TestExportSingleProjectScopeIsProject(t *testing.T) {
	e, repo := newTestEngine(t)
	_, err := repo.CreateProject("storyverse", "Story Verse", "")
	require.NoError(t, err)
	_, err = repo.SaveEntity("storyverse", "hero", model.Payload{"name": "Aria"}, nil, brain.SaveOptions{})
	require.NoError(t, err)

	bundle, err := e.Export(Request{ProjectTargets: []string{"storyverse"}})
	require.NoError(t, err)
	assert.Equal(t, "project", bundle.Scope)
	assert.Contains(t, bundle.Index.Entities["storyverse"], "hero")
}

func TestExportManualModeRejectsEntitySelectorsAcrossMultipleProjects(t *testing.T) {
	e, repo := newTestEngine(t)
	_, err := repo.CreateProject("a", "A", "")
	require.NoError(t, err)
	_, err = repo.CreateProject("b", "B", "")
	require.NoError(t, err)

	_, err = e.Export(Request{
		ProjectTargets: []string{"a", "b"},
		EntityFilters:  []filter.Definition{{Type: "slug_equals", Config: map[string]interface{}{"value": "hero"}}},
	})
	require.Error(t, err)
}

func TestExportMissingRequiredParamFails(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Export(Request{ProjectTargets: []string{"${param.target}"}})
	require.Error(t, err)
}

func TestExportWhitelistTransformProjectsFields(t *testing.T) {
	e, repo := newTestEngine(t)
	_, err := repo.CreateProject("storyverse", "Story Verse", "")
	require.NoError(t, err)
	_, err = repo.SaveEntity("storyverse", "hero", model.Payload{"name": "Aria", "secret": "hidden"}, nil, brain.SaveOptions{})
	require.NoError(t, err)

	bundle, err := e.Export(Request{ProjectTargets: []string{"storyverse"}, Whitelist: []string{"name"}})
	require.NoError(t, err)
	projects := bundle.Data["projects"].(map[string]interface{})
	hero := projects["storyverse"].(map[string]interface{})["hero"].(model.Payload)
	assert.Equal(t, model.Payload{"name": "Aria"}, hero)
}

func TestExportPayloadVersionsAreDeterministicAcrossRuns(t *testing.T) {
	e, repo := newTestEngine(t)
	_, err := repo.CreateProject("storyverse", "Story Verse", "")
	require.NoError(t, err)
	_, err = repo.SaveEntity("storyverse", "hero", model.Payload{"name": "Aria"}, nil, brain.SaveOptions{})
	require.NoError(t, err)
	_, err = repo.SaveEntity("storyverse", "villain", model.Payload{"name": "Korr"}, nil, brain.SaveOptions{})
	require.NoError(t, err)

	first, err := e.Export(Request{ProjectTargets: []string{"storyverse"}})
	require.NoError(t, err)
	second, err := e.Export(Request{ProjectTargets: []string{"storyverse"}})
	require.NoError(t, err)

	firstEntities := first.Data["entities"].([]map[string]interface{})
	secondEntities := second.Data["entities"].([]map[string]interface{})
	require.Len(t, firstEntities, 2)
	require.Len(t, secondEntities, 2)

	for i := range firstEntities {
		assert.Equal(t, firstEntities[i]["entity"], secondEntities[i]["entity"])
		firstVersions := firstEntities[i]["payload_versions"].([]map[string]interface{})
		secondVersions := secondEntities[i]["payload_versions"].([]map[string]interface{})
		require.NotEmpty(t, firstVersions)
		assert.Equal(t, firstVersions[0]["commit"], secondVersions[0]["commit"])
		assert.NotEmpty(t, firstVersions[0]["commit"])
		assert.Equal(t, "1", firstVersions[0]["version"])
	}
}

func TestExportDefaultRenderIsJSON(t *testing.T) {
	e, repo := newTestEngine(t)
	_, err := repo.CreateProject("storyverse", "Story Verse", "")
	require.NoError(t, err)

	bundle, err := e.Export(Request{ProjectTargets: []string{"storyverse"}})
	require.NoError(t, err)
	assert.Contains(t, bundle.Rendered, `"scope": "project"`)
}
