package scheduler

import (
	"time"

	"github.com/clubeapp/points-engine/internal/jobs"
	"github.com/clubeapp/points-engine/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Scheduler wires the job runner into cron.
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

func New(jobRunner *jobs.JobRunner, checkoutSweepSpec string) *Scheduler {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	if _, err := c.AddFunc(checkoutSweepSpec, jobRunner.ExpireCheckouts); err != nil {
		logger.Error("Failed to register checkout expiry sweep", "error", err, "spec", checkoutSweepSpec)
	}

	return s
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info("Scheduler started")
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Scheduler stopped")
}
