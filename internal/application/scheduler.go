package application

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler repeats triage runs on a fixed interval.
type Scheduler struct {
	service  *TriageService
	interval time.Duration
	opts     RunOptions
	logger   *slog.Logger
}

// NewScheduler creates a Scheduler. Only the first run honors
// opts.InvalidateCache; later runs use the cache normally.
func NewScheduler(service *TriageService, interval time.Duration, opts RunOptions, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		service:  service,
		interval: interval,
		opts:     opts,
		logger:   logger,
	}
}

// Start runs once immediately, then once per interval. Start blocks until ctx
// is cancelled, so it should be called in a goroutine or as the last call of
// main.
func (s *Scheduler) Start(ctx context.Context) {
	s.runOnce(ctx, s.opts)

	next := s.opts
	next.InvalidateCache = false

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx, next)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, opts RunOptions) {
	if _, err := s.service.Run(ctx, opts); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("triage run failed", "error", err)
	}
}
