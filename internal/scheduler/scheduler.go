package scheduler

import (
	"context"
	"log/slog"
	"time"
)

type expirySweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// Scheduler drives the expiry sweep on a fixed interval, independently of request traffic.
type Scheduler struct {
	sweeper  expirySweeper
	interval time.Duration
	logger   *slog.Logger
}

func New(sweeper expirySweeper, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
	}
}

// Start sweeps once immediately, then on every tick until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("expiry scheduler started", "interval", s.interval)
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	n, err := s.sweeper.Sweep(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "expiry sweep failed", "err", err)
		return
	}
	s.logger.DebugContext(ctx, "expiry sweep finished", "expired", n)
}
