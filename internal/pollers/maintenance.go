package pollers

import (
	"context"
	"errors"
	"time"

	"github.com/rmitchellscott/halftone/internal/database"
	"github.com/rmitchellscott/halftone/internal/logging"
	"github.com/rmitchellscott/halftone/internal/middleware"
	"github.com/rmitchellscott/halftone/internal/storage"
)

// NewRetentionPoller removes stored outputs and job records older than
// maxAge. maxAge <= 0 disables it.
func NewRetentionPoller(jobs *database.JobService, outputs *storage.OutputStore, maxAge, interval time.Duration) *BasePoller {
	cfg := DefaultConfig("retention", interval)
	cfg.Enabled = cfg.Enabled && maxAge > 0

	return NewBasePoller(cfg, func(ctx context.Context) error {
		_, outErr := outputs.CleanupOldImages(ctx, maxAge)

		n, jobErr := jobs.DeleteOlderThan(time.Now().Add(-maxAge))
		if jobErr == nil && n > 0 {
			logging.InfoWithComponent(logging.ComponentDatabase, "removed old jobs", "count", n)
		}
		return errors.Join(outErr, jobErr)
	})
}

// NewLimiterCleanupPoller drops rate limiter state for clients idle longer
// than interval
func NewLimiterCleanupPoller(limiter *middleware.RateLimiter, interval time.Duration) *BasePoller {
	return NewBasePoller(DefaultConfig("rate-limiter-cleanup", interval), func(ctx context.Context) error {
		if n := limiter.Cleanup(interval); n > 0 {
			logging.DebugWithComponent(logging.ComponentAPI, "dropped idle rate limiters", "count", n)
		}
		return nil
	})
}
