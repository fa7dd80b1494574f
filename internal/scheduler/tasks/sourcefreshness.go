package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/explorador/imdbexplorer/internal/dataset"
	"github.com/explorador/imdbexplorer/internal/scheduler"
)

const SourceFreshnessTaskID = "source-freshness"

// Refresher reloads cached sources whose files changed.
type Refresher interface {
	Refresh(ctx context.Context) (dataset.RefreshResult, error)
}

// HealthChecker re-evaluates source health after a refresh.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// SourceFreshnessTask re-fingerprints sources on a schedule so that edited
// files are picked up without waiting for the next request.
type SourceFreshnessTask struct {
	store  Refresher
	health HealthChecker
	logger zerolog.Logger
}

// NewSourceFreshnessTask creates the task. health may be nil.
func NewSourceFreshnessTask(store Refresher, health HealthChecker, logger zerolog.Logger) *SourceFreshnessTask {
	return &SourceFreshnessTask{
		store:  store,
		health: health,
		logger: logger.With().Str("task", SourceFreshnessTaskID).Logger(),
	}
}

// Run refreshes changed sources, then updates health. A failed refresh still
// updates health so the failure becomes visible.
func (t *SourceFreshnessTask) Run(ctx context.Context) error {
	result, refreshErr := t.store.Refresh(ctx)
	if refreshErr != nil {
		t.logger.Warn().Err(refreshErr).Strs("failed", result.Failed).Msg("Source refresh failed")
	} else if len(result.Reloaded) > 0 {
		t.logger.Info().Strs("reloaded", result.Reloaded).Msg("Reloaded changed sources")
	}

	var healthErr error
	if t.health != nil {
		healthErr = t.health.Check(ctx)
	}
	return errors.Join(refreshErr, healthErr)
}

// RegisterSourceFreshnessTask registers the freshness check with the scheduler.
func RegisterSourceFreshnessTask(sched *scheduler.Scheduler, task *SourceFreshnessTask, cron string) error {
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          SourceFreshnessTaskID,
		Name:        "Source Freshness",
		Description: "Reloads source tables whose files changed on disk and refreshes source health",
		Cron:        cron,
		RunOnStart:  true,
		Timeout:     10 * time.Minute,
		Func:        task.Run,
	})
}
