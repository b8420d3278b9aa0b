package tasks

import "context"

// ScheduledTaskFunc is the signature of every scheduled task. The context
// should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// Task names, matching the keys of the scheduler config section.
const (
	SQLMaintenance     = "sql_maintenance"
	SessionCacheReport = "session_cache_report"
)

// RegisterAllTasks returns every task keyed by its config name.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := map[string]ScheduledTaskFunc{
		SQLMaintenance:     newSQLMaintenanceTask(deps),
		SessionCacheReport: newSessionCacheReportTask(deps),
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
