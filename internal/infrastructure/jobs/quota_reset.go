package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"write-space.backend/pkg/logger"
	"write-space.backend/pkg/metrics"
)

// MonthlySchedule fires at 00:00 UTC on the first day of every month
const MonthlySchedule = "0 0 1 * *"

type usageResetter interface {
	ResetUsage(ctx context.Context) (int64, error)
}

// QuotaResetJob zeroes every API key usage counter at each quota period boundary
type QuotaResetJob struct {
	repo     usageResetter
	schedule string
	cron     *cron.Cron
	stop     chan struct{}
}

func NewQuotaResetJob(repo usageResetter) *QuotaResetJob {
	return &QuotaResetJob{
		repo:     repo,
		schedule: MonthlySchedule,
		cron:     cron.New(cron.WithLocation(time.UTC)),
		stop:     make(chan struct{}),
	}
}

// Start registers the schedule and blocks until ctx is cancelled or Stop is called.
func (j *QuotaResetJob) Start(ctx context.Context) error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.resetUsage(ctx) }); err != nil {
		return err
	}

	logger.Info(ctx, "Starting quota reset job", zap.String("schedule", j.schedule))
	j.cron.Start()

	select {
	case <-ctx.Done():
		logger.Info(ctx, "Quota reset job stopped (context cancelled)")
	case <-j.stop:
		logger.Info(ctx, "Quota reset job stopped")
	}

	<-j.cron.Stop().Done()
	return nil
}

func (j *QuotaResetJob) Stop() {
	close(j.stop)
}

func (j *QuotaResetJob) resetUsage(ctx context.Context) {
	n, err := j.repo.ResetUsage(ctx)
	if err != nil {
		logger.Error(ctx, "Failed to reset API key usage", zap.Error(err))
		return
	}
	metrics.QuotaResetsTotal.Add(float64(n))
	logger.Info(ctx, "Reset API key usage", zap.Int64("keys", n))
}
