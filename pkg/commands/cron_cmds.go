package commands

import (
	"github.com/aaviondb/aaviondb/pkg/scheduler"
)

func registerCronCommands(deps Dependencies) {
	deps.Registry.Register("cron", handleCron(deps))
}

// handleCron drives the same due-task sweep the internal scheduler
// runner performs, so an operator may instead point an external cron
// entry at this unauthenticated action (spec.md §4.9).
func handleCron(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		ran := scheduler.RunDueTasks(deps.Repo, deps.Registry, deps.Logger)
		return map[string]interface{}{"ran": ran}, nil
	}
}
