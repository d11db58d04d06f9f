package brain

import (
	"testing"

	"github.com/aaviondb/aaviondb/pkg/events"
	"github.com/aaviondb/aaviondb/pkg/model"
	"github.com/aaviondb/aaviondb/pkg/pathlocator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	loc, err := pathlocator.New(t.TempDir())
	require.NoError(t, err)
	repo := New(loc, events.New())
	require.NoError(t, repo.EnsureSystemBrain())
	require.NoError(t, repo.EnsureActiveBrain("default"))
	return repo
}

func TestSaveCreatesFirstVersion(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.CreateProject("storyverse", "Story Verse", "")
	require.NoError(t, err)

	res, err := repo.SaveEntity("storyverse", "hero", model.Payload{"name": "Aria", "role": "Pilot"}, nil, SaveOptions{})
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.Equal(t, 1, res.Version.Version)
	assert.Equal(t, model.Payload{"name": "Aria", "role": "Pilot"}, res.Version.Payload)
	assert.Equal(t, res.Version.Hash, res.Version.Commit)
}

func TestSaveMergeDeletesEmptyStringKeys(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.CreateProject("storyverse", "Story Verse", "")
	require.NoError(t, err)

	_, err = repo.SaveEntity("storyverse", "hero", model.Payload{"name": "Aria", "role": "Pilot"}, nil, SaveOptions{})
	require.NoError(t, err)

	res, err := repo.SaveEntity("storyverse", "hero", model.Payload{"role": "Commander", "callsign": ""}, nil, SaveOptions{Merge: true})
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.Equal(t, 2, res.Version.Version)
	assert.Equal(t, model.Payload{"name": "Aria", "role": "Commander"}, res.Version.Payload)
	if _, ok := res.Version.Payload["callsign"]; ok {
		t.Fatalf("callsign should have been deleted by merge, got %v", res.Version.Payload)
	}
}

func TestSaveUnchangedPayloadDoesNotCreateVersion(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.CreateProject("storyverse", "Story Verse", "")
	require.NoError(t, err)

	payload := model.Payload{"name": "Aria", "role": "Pilot"}
	_, err = repo.SaveEntity("storyverse", "hero", payload, nil, SaveOptions{})
	require.NoError(t, err)

	res, err := repo.SaveEntity("storyverse", "hero", model.Payload{"name": "Aria", "role": "Pilot"}, nil, SaveOptions{})
	require.NoError(t, err)

	assert.False(t, res.Changed)
	assert.Equal(t, 1, res.Version.Version)

	versions, err := repo.ListEntityVersions("storyverse", "hero")
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestRestoreEntityVersionAppendsNewVersion(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.CreateProject("storyverse", "Story Verse", "")
	require.NoError(t, err)

	_, err = repo.SaveEntity("storyverse", "hero", model.Payload{"name": "Aria", "role": "Pilot"}, nil, SaveOptions{})
	require.NoError(t, err)
	_, err = repo.SaveEntity("storyverse", "hero", model.Payload{"name": "Aria", "role": "Commander"}, nil, SaveOptions{})
	require.NoError(t, err)

	res, err := repo.RestoreEntityVersion("storyverse", "hero", "@1")
	require.NoError(t, err)

	assert.Equal(t, 3, res.Version.Version)
	assert.Equal(t, model.Payload{"name": "Aria", "role": "Pilot"}, res.Version.Payload)

	e, err := repo.GetEntity("storyverse", "hero")
	require.NoError(t, err)
	assert.Equal(t, 3, e.ActiveVersion)

	v1 := e.FindVersion(1)
	v2 := e.FindVersion(2)
	assert.Equal(t, model.VersionInactive, v1.Status)
	assert.Equal(t, model.VersionInactive, v2.Status)
}

func TestGetEntityVersionByCommitHash(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.CreateProject("storyverse", "Story Verse", "")
	require.NoError(t, err)

	res, err := repo.SaveEntity("storyverse", "hero", model.Payload{"name": "Aria"}, nil, SaveOptions{})
	require.NoError(t, err)

	v, err := repo.GetEntityVersion("storyverse", "hero", "#"+res.Version.Hash)
	require.NoError(t, err)
	assert.Equal(t, res.Version.Version, v.Version)
}

func TestDeleteEntityVersionReassignsActive(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.CreateProject("storyverse", "Story Verse", "")
	require.NoError(t, err)

	_, err = repo.SaveEntity("storyverse", "hero", model.Payload{"v": "1"}, nil, SaveOptions{})
	require.NoError(t, err)
	_, err = repo.SaveEntity("storyverse", "hero", model.Payload{"v": "2"}, nil, SaveOptions{})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteEntityVersion("storyverse", "hero", "@2"))

	e, err := repo.GetEntity("storyverse", "hero")
	require.NoError(t, err)
	assert.Equal(t, 1, e.ActiveVersion)
	assert.Len(t, e.Versions, 1)
}

func TestIntegrityReportCleanOnFreshSave(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.CreateProject("storyverse", "Story Verse", "")
	require.NoError(t, err)
	_, err = repo.SaveEntity("storyverse", "hero", model.Payload{"name": "Aria"}, nil, SaveOptions{})
	require.NoError(t, err)

	rep, err := repo.IntegrityReport(repo.ActiveBrain())
	require.NoError(t, err)
	assert.Empty(t, rep.Violations)
}

func TestDeleteProjectPurgesCommitIndex(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.CreateProject("storyverse", "Story Verse", "")
	require.NoError(t, err)
	_, err = repo.SaveEntity("storyverse", "hero", model.Payload{"name": "Aria"}, nil, SaveOptions{})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteProject("storyverse"))

	_, err = repo.GetProject("storyverse")
	assert.Error(t, err)
}
