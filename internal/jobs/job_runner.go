package jobs

import (
	"context"
	"time"

	"github.com/clubeapp/points-engine/internal/services"
	"github.com/clubeapp/points-engine/pkg/logger"
)

const jobTimeout = 30 * time.Second

// JobRunner coordinates the periodic sweeps. Expiry is also evaluated
// lazily on read; the sweep exists so expiry events go out promptly.
type JobRunner struct {
	checkout *services.CheckoutService
}

func NewJobRunner(checkout *services.CheckoutService) *JobRunner {
	return &JobRunner{checkout: checkout}
}

func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	jobFunc()
}

// ExpireCheckouts transitions overdue checkouts to EXPIRED.
func (jr *JobRunner) ExpireCheckouts() {
	jr.runWithRecovery("expire_checkouts", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		expired, err := jr.checkout.ExpireDue(ctx)
		if err != nil {
			logger.Error("Checkout expiry sweep failed", "error", err)
			return
		}
		if expired > 0 {
			logger.Info("Expired overdue checkouts", "count", expired)
		}
	})
}
