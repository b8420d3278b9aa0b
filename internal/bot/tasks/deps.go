// Package tasks implements the scheduled maintenance tasks of storebot.
package tasks

import (
	"context"
	"log/slog"

	"github.com/edgard/storebot/internal/session"
)

// Maintainer runs periodic database upkeep.
type Maintainer interface {
	RunSQLMaintenance(ctx context.Context) error
}

// CacheStats reports session cache counters.
type CacheStats interface {
	Stats() session.Stats
}

// TaskDeps contains the dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger   *slog.Logger
	Store    Maintainer
	Sessions CacheStats
}
