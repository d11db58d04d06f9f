package scheduler

import (
	"sync"
	"time"

	"github.com/aaviondb/aaviondb/pkg/brain"
	"github.com/aaviondb/aaviondb/pkg/command"
	"github.com/aaviondb/aaviondb/pkg/log"
	"github.com/aaviondb/aaviondb/pkg/metrics"
	"github.com/rs/zerolog"
)

// Runner ticks over the system brain's scheduler_tasks and dispatches
// each due task's configured action through the command registry —
// "merely another consumer of the command dispatcher" (spec.md §2), not
// a privileged path into the core.
type Runner struct {
	repo     *brain.Repository
	registry *command.Registry
	logger   zerolog.Logger
	interval time.Duration

	mu     sync.Mutex
	stopCh chan struct{}
}

// NewRunner constructs a Runner that checks scheduler_tasks every
// interval (typically 1s; tasks themselves carry their own
// IntervalSecs and only fire once that much time has elapsed since
// LastRunAt).
func NewRunner(repo *brain.Repository, registry *command.Registry, interval time.Duration) *Runner {
	return &Runner{
		repo:     repo,
		registry: registry,
		logger:   log.WithComponent("scheduler"),
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the runner loop in a background goroutine.
func (r *Runner) Start() {
	go r.run()
}

// Stop halts the runner loop.
func (r *Runner) Stop() {
	close(r.stopCh)
}

func (r *Runner) run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info().Dur("interval", r.interval).Msg("scheduler runner started")

	for {
		select {
		case <-ticker.C:
			r.tick()
		case <-r.stopCh:
			r.logger.Info().Msg("scheduler runner stopped")
			return
		}
	}
}

// tick runs one scheduling cycle: every active task whose interval has
// elapsed since LastRunAt is dispatched and stamped.
func (r *Runner) tick() {
	r.mu.Lock()
	defer r.mu.Unlock()
	RunDueTasks(r.repo, r.registry, r.logger)
}

// RunDueTasks walks the system brain's scheduler tasks once and
// dispatches every active task whose interval has elapsed. It backs
// both the internal ticker (Runner) and the unauthenticated `cron`
// action, so an operator can drive scheduling either by running a
// long-lived process or by pointing an external cron entry at the
// HTTP/CLI `cron` action (spec.md §4.9).
func RunDueTasks(repo *brain.Repository, registry *command.Registry, logger zerolog.Logger) []string {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.CronRunDuration)

	tasks, err := repo.ListSchedulerTasks()
	if err != nil {
		logger.Error().Err(err).Msg("failed to list scheduler tasks")
		return nil
	}

	now := time.Now()
	var ran []string
	for _, task := range tasks {
		if !task.Active {
			continue
		}
		due := task.LastRunAt.Add(time.Duration(task.IntervalSecs) * time.Second)
		if now.Before(due) {
			continue
		}
		runTask(repo, registry, logger, task.Slug, task.Action, task.Parameters, now)
		ran = append(ran, task.Slug)
	}
	return ran
}

func runTask(repo *brain.Repository, registry *command.Registry, logger zerolog.Logger, slug, action string, params map[string]interface{}, at time.Time) {
	env := registry.Dispatch(action, params)

	outcome := "ok"
	if env.Status != "ok" {
		outcome = "error"
		logger.Error().
			Str("task", slug).
			Str("action", action).
			Str("message", env.Message).
			Msg("scheduled action failed")
	} else {
		logger.Info().Str("task", slug).Str("action", action).Msg("scheduled action dispatched")
	}
	metrics.CronRunsTotal.WithLabelValues(slug, outcome).Inc()

	if err := repo.TouchSchedulerTask(slug, at); err != nil {
		logger.Error().Err(err).Str("task", slug).Msg("failed to stamp scheduler task last-run time")
	}
}
