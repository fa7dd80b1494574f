package tasks

import (
	"context"

	"github.com/explorador/imdbexplorer/internal/scheduler"
)

const LedgerCleanupTaskID = "ledger-cleanup"

// LedgerCleaner deletes old load ledger entries.
type LedgerCleaner interface {
	CleanupOlderThan(ctx context.Context, days int) (int64, error)
}

// RegisterLedgerCleanupTask registers the load ledger cleanup task with the
// scheduler. A retention of zero days keeps every entry.
func RegisterLedgerCleanupTask(sched *scheduler.Scheduler, ledger LedgerCleaner, cron string, retentionDays int) error {
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          LedgerCleanupTaskID,
		Name:        "Load Ledger Cleanup",
		Description: "Deletes source load entries older than the configured retention period",
		Cron:        cron,
		Func: func(ctx context.Context) error {
			_, err := ledger.CleanupOlderThan(ctx, retentionDays)
			return err
		},
	})
}
