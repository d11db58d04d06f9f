/*
Package scheduler runs the out-of-band task loop that backs the `cron`
action (spec.md §4.9: "the sole action allowed to bypass
authentication").

Runner ticks on a fixed interval, reads the system brain's
scheduler_tasks map, and for every active task whose interval has
elapsed since its last run, dispatches the task's configured action
straight through the command registry — the same entry point any CLI
or HTTP caller uses. The runner holds no special privilege over the
core; it is, as the spec puts it, merely another consumer of the
command dispatcher.
*/
package scheduler
