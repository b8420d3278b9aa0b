package tasks

import "context"

// newSessionCacheReportTask creates the task that logs session cache counters.
func newSessionCacheReportTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", SessionCacheReport)

	return func(ctx context.Context) error {
		st := deps.Sessions.Stats()

		var hitRatio float64
		if lookups := st.Hits + st.Misses; lookups > 0 {
			hitRatio = float64(st.Hits) / float64(lookups)
		}

		log.InfoContext(ctx, "Session cache report",
			"entries", st.Entries,
			"hits", st.Hits,
			"misses", st.Misses,
			"builds", st.Builds,
			"hit_ratio", hitRatio)
		return nil
	}
}
