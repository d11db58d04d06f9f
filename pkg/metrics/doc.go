/*
Package metrics exposes AavionDB's Prometheus instrumentation and the
/health, /ready and /live HTTP handlers.

Metrics are registered once at package init. Of the catalog below,
only the scheduler metrics are updated, by pkg/scheduler as tasks run;
the command, cache, security, auth and export metrics are registered
and exposed but nothing updates them, so they stay at zero. There is
no separate collector goroutine polling state, since AavionDB
is a single-process, single-brain-repository engine rather than a
cluster with state to poll.

# Catalog

Command pipeline:
  - aaviondb_commands_total{action,outcome}: counter
  - aaviondb_command_duration_seconds{action}: histogram

Cache:
  - aaviondb_cache_hits_total, aaviondb_cache_misses_total: counters
  - aaviondb_cache_entries_total: gauge

Security and auth:
  - aaviondb_security_blocks_total{reason}: counter
  - aaviondb_security_lockdown_active: gauge (1 = locked down)
  - aaviondb_auth_decisions_total{reason}: counter

Export:
  - aaviondb_exports_total{scope}: counter
  - aaviondb_export_duration_seconds: histogram

Scheduler:
  - aaviondb_cron_runs_total{task,outcome}: counter
  - aaviondb_cron_run_duration_seconds: histogram

# Health

RegisterComponent/UpdateComponent record the health of a named
component ("storage", "api"); GetHealth aggregates them into an
overall "healthy"/"unhealthy" status, and GetReadiness additionally
requires every critical component to be registered and healthy before
returning "ready". HealthHandler, ReadyHandler and LivenessHandler wrap
these into http.HandlerFunc values for mounting on the same
http.ServeMux as Handler()'s /metrics endpoint.
*/
package metrics
