package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/podcastify/core/internal/modules/notification/subscription"
	pkgcron "github.com/podcastify/core/internal/pkg/cron"
)

const orphanSweepBatch = 100

// registerCronJobs registers the maintenance sweeps.
func (a *App) registerCronJobs() {
	subs := subscription.NewStore(a.db)
	cronLogger := a.logger.Named("cron")

	a.sched.Register(pkgcron.Job{
		Name:        "prune-subscriptions",
		Description: "Delete subscriptions missing their encryption keys",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			n, err := subs.PruneInvalid(ctx)
			if err != nil {
				cronLogger.Warn("prune subscriptions failed", zap.Error(err))
				return err
			}
			cronLogger.Info("pruned subscriptions", zap.Int64("deleted", n))
			return nil
		},
	})

	a.sched.Register(pkgcron.Job{
		Name:        "sweep-orphan-media",
		Description: "Delete uploads whose content record was never written",
		Interval:    time.Hour,
		RunOnStart:  true,
		Fn: func(ctx context.Context) error {
			n, err := a.media.SweepOrphans(ctx, orphanSweepBatch)
			if err != nil {
				cronLogger.Warn("sweep orphan media failed", zap.Error(err))
				return err
			}
			if n > 0 {
				cronLogger.Info("swept orphan media", zap.Int("deleted", n))
			}
			return nil
		},
	})
}
