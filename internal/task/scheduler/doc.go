// Package scheduler parses cadence strings and drives the bound action on them.
//
// The scheduler is responsible for:
//   - parsing cadence strings ("8h", "30m", "09:00,15:00")
//   - registering jobs and computing next due times (robfig/cron schedules)
//   - the single-flow poll loop that fires due jobs in registration order
//
// Execution itself (panic isolation, run history) is delegated to internal/task/engine.
//
// Due times are checked once per polling quantum, so a job fires at most one
// quantum (plus the runtime of actions ahead of it in the same tick) after it is due.
package scheduler
