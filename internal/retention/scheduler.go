package retention

import (
	"context"
	"errors"
	"log/slog"
	"time"

	dErrors "memberport/pkg/domain-errors"
)

// Scheduler triggers periodic retention runs. Deployments that drive purges
// from an external cron simply never start it.
type Scheduler struct {
	engine   *Engine
	interval time.Duration
	logger   *slog.Logger
}

func NewScheduler(engine *Engine, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{engine: engine, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled. A run that loses the lock race to a
// concurrent trigger is logged and retried on the next tick, not escalated.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_, err := s.engine.Run(ctx)
			switch {
			case err == nil:
			case errors.Is(ctx.Err(), context.Canceled):
				return ctx.Err()
			case dErrors.HasCode(err, dErrors.CodeConflict):
				s.logger.InfoContext(ctx, "scheduled retention run skipped, another run in progress")
			default:
				s.logger.ErrorContext(ctx, "scheduled retention run failed", "error", err)
			}
		}
	}
}
