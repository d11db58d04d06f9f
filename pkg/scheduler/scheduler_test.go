package scheduler

import (
	"testing"
	"time"

	"github.com/aaviondb/aaviondb/pkg/brain"
	"github.com/aaviondb/aaviondb/pkg/command"
	"github.com/aaviondb/aaviondb/pkg/events"
	"github.com/aaviondb/aaviondb/pkg/model"
	"github.com/aaviondb/aaviondb/pkg/pathlocator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(t *testing.T) (*Runner, *brain.Repository, *command.Registry) {
	t.Helper()
	loc, err := pathlocator.New(t.TempDir())
	require.NoError(t, err)
	repo := brain.New(loc, events.New())
	require.NoError(t, repo.EnsureSystemBrain())
	require.NoError(t, repo.EnsureActiveBrain("default"))
	registry := command.NewRegistry(events.New())
	return NewRunner(repo, registry, time.Millisecond), repo, registry
}

func TestTickDispatchesDueTask(t *testing.T) {
	r, repo, registry := newTestRunner(t)

	var calls int
	registry.Register("noop", func(params map[string]interface{}) (map[string]interface{}, error) {
		calls++
		return nil, nil
	})

	require.NoError(t, repo.SetSchedulerTask(&model.SchedulerTask{
		Slug: "ping", Action: "noop", Active: true, IntervalSecs: 0,
	}))

	r.tick()

	assert.Equal(t, 1, calls)
}

func TestTickSkipsTaskNotYetDue(t *testing.T) {
	r, repo, registry := newTestRunner(t)

	var calls int
	registry.Register("noop", func(params map[string]interface{}) (map[string]interface{}, error) {
		calls++
		return nil, nil
	})

	require.NoError(t, repo.SetSchedulerTask(&model.SchedulerTask{
		Slug: "ping", Action: "noop", Active: true, IntervalSecs: 3600, LastRunAt: time.Now(),
	}))

	r.tick()

	assert.Equal(t, 0, calls)
}

func TestTickSkipsInactiveTask(t *testing.T) {
	r, repo, registry := newTestRunner(t)

	var calls int
	registry.Register("noop", func(params map[string]interface{}) (map[string]interface{}, error) {
		calls++
		return nil, nil
	})

	require.NoError(t, repo.SetSchedulerTask(&model.SchedulerTask{
		Slug: "ping", Action: "noop", Active: false, IntervalSecs: 0,
	}))

	r.tick()

	assert.Equal(t, 0, calls)
}

func TestTickStampsLastRunAt(t *testing.T) {
	r, repo, registry := newTestRunner(t)
	registry.Register("noop", func(params map[string]interface{}) (map[string]interface{}, error) {
		return nil, nil
	})
	require.NoError(t, repo.SetSchedulerTask(&model.SchedulerTask{
		Slug: "ping", Action: "noop", Active: true, IntervalSecs: 0,
	}))

	r.tick()

	task, err := repo.GetSchedulerTask("ping")
	require.NoError(t, err)
	assert.False(t, task.LastRunAt.IsZero())
}

func TestStartStopDoesNotPanic(t *testing.T) {
	r, _, _ := newTestRunner(t)
	r.Start()
	time.Sleep(5 * time.Millisecond)
	r.Stop()
}
