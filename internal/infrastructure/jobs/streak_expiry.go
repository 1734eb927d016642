package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"savingz.backend/internal/domain/entities"
	"savingz.backend/pkg/logger"
)

// StreakResetter zeroes streaks whose last save is older than cutoff
type StreakResetter interface {
	ResetLapsedStreaks(ctx context.Context, cutoff time.Time) (int64, error)
}

// StreakMetrics records how many streaks a run reset
type StreakMetrics interface {
	RecordStreakResets(count int64)
}

// StreakExpiryJob resets the streak of every user who missed a UTC day
type StreakExpiryJob struct {
	repo     StreakResetter
	metrics  StreakMetrics
	schedule string
	timeout  time.Duration
	now      func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

func NewStreakExpiryJob(repo StreakResetter, m StreakMetrics, schedule string) *StreakExpiryJob {
	if schedule == "" {
		schedule = "@daily"
	}
	return &StreakExpiryJob{
		repo:     repo,
		metrics:  m,
		schedule: schedule,
		timeout:  time.Minute,
		now:      time.Now,
	}
}

// Start registers the job on a UTC cron scheduler and runs it once
// immediately so a restart does not leave stale streaks until the next tick.
func (j *StreakExpiryJob) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cron != nil {
		return nil
	}

	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(j.schedule, func() { j.RunOnce(ctx) }); err != nil {
		return err
	}
	j.cron = c

	logger.Info(ctx, "Starting streak expiry job", zap.String("schedule", j.schedule))
	go j.RunOnce(ctx)
	c.Start()
	return nil
}

// Stop halts the scheduler and waits for a running reset to finish
func (j *StreakExpiryJob) Stop() {
	j.mu.Lock()
	c := j.cron
	j.cron = nil
	j.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
	logger.Info(context.Background(), "Streak expiry job stopped")
}

// RunOnce performs a single reset pass
func (j *StreakExpiryJob) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	runCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	cutoff := entities.StreakCutoff(j.now())
	count, err := j.repo.ResetLapsedStreaks(runCtx, cutoff)
	if err != nil {
		logger.Error(ctx, "Failed to reset lapsed streaks", zap.Error(err))
		return
	}
	if j.metrics != nil {
		j.metrics.RecordStreakResets(count)
	}
	if count > 0 {
		logger.Info(ctx, "Reset lapsed streaks", zap.Int64("count", count), zap.Time("cutoff", cutoff))
	}
}
