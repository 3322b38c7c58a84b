package services

import (
	"context"
	"log/slog"
	"time"
)

// JobReaper periodically evicts jobs completed more than ttl ago.
type JobReaper struct {
	logger   *slog.Logger
	registry *JobRegistry
	ttl      time.Duration
	tick     time.Duration
}

func NewJobReaper(logger *slog.Logger, registry *JobRegistry, ttl, interval time.Duration) *JobReaper {
	if interval <= 0 {
		interval = 1 * time.Minute
	}
	return &JobReaper{
		logger:   logger,
		registry: registry,
		ttl:      ttl,
		tick:     interval,
	}
}

// Enabled reports whether a retention limit is configured.
func (r *JobReaper) Enabled() bool {
	return r.ttl > 0
}

// Run blocks until ctx is cancelled. With no ttl it returns immediately.
func (r *JobReaper) Run(ctx context.Context) error {
	if !r.Enabled() {
		return nil
	}

	r.logger.Info("job reaper started", "ttl", r.ttl, "check_interval", r.tick)
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("job reaper stopped")
			return nil
		case <-ticker.C:
			r.sweep(time.Now())
		}
	}
}

func (r *JobReaper) sweep(now time.Time) int {
	evicted := r.registry.Reap(now.Add(-r.ttl))
	if evicted > 0 {
		r.logger.Info("reaped completed jobs", "count", evicted, "remaining", r.registry.Len())
	}
	return evicted
}
