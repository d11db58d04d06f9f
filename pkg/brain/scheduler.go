package brain

import (
	"sort"
	"time"

	"github.com/aaviondb/aaviondb/internal/apperr"
	"github.com/aaviondb/aaviondb/pkg/model"
)

// ListSchedulerTasks returns every scheduler task defined on the
// system brain, sorted by slug (spec.md §3: "scheduler_tasks").
func (r *Repository) ListSchedulerTasks() ([]*model.SchedulerTask, error) {
	b, err := r.load(true, "")
	if err != nil {
		return nil, err
	}
	slugs := make([]string, 0, len(b.SchedulerTasks))
	for s := range b.SchedulerTasks {
		slugs = append(slugs, s)
	}
	sort.Strings(slugs)

	out := make([]*model.SchedulerTask, 0, len(slugs))
	for _, s := range slugs {
		out = append(out, b.SchedulerTasks[s])
	}
	return out, nil
}

// GetSchedulerTask returns one scheduler task by slug.
func (r *Repository) GetSchedulerTask(slug string) (*model.SchedulerTask, error) {
	b, err := r.load(true, "")
	if err != nil {
		return nil, err
	}
	t, ok := b.SchedulerTasks[slug]
	if !ok {
		return nil, apperr.NotFound("not_found", "no such scheduler task: "+slug)
	}
	return t, nil
}

// SetSchedulerTask creates or replaces a scheduler task definition.
func (r *Repository) SetSchedulerTask(task *model.SchedulerTask) error {
	_, err := r.mutate(true, "", func(b *model.Brain) error {
		b.SchedulerTasks[task.Slug] = task
		return nil
	})
	if err != nil {
		return err
	}
	if r.bus != nil {
		r.bus.Emit("scheduler.task_updated", map[string]interface{}{"slug": task.Slug})
	}
	return nil
}

// RemoveSchedulerTask deletes a scheduler task by slug. A missing slug
// is a no-op.
func (r *Repository) RemoveSchedulerTask(slug string) error {
	_, err := r.mutate(true, "", func(b *model.Brain) error {
		delete(b.SchedulerTasks, slug)
		return nil
	})
	return err
}

// TouchSchedulerTask stamps a task's last-run time, used by the
// scheduler runner after it dispatches the task's action.
func (r *Repository) TouchSchedulerTask(slug string, at time.Time) error {
	_, err := r.mutate(true, "", func(b *model.Brain) error {
		t, ok := b.SchedulerTasks[slug]
		if !ok {
			return apperr.NotFound("not_found", "no such scheduler task: "+slug)
		}
		t.LastRunAt = at
		return nil
	})
	return err
}
