// Package sweeper periodically deletes expired sessions.
package sweeper

import (
	"context"
	"time"

	"github.com/dmitrijs2005/enigma/internal/logging"
)

const sweepTimeout = 30 * time.Second

type sweepFunc interface {
	SweepExpiredSessions(ctx context.Context) (int64, error)
}

type Sweeper struct {
	target   sweepFunc
	interval time.Duration
	logger   logging.Logger
}

// New returns a Sweeper; an interval <= 0 disables it.
func New(target sweepFunc, interval time.Duration, l logging.Logger) *Sweeper {
	return &Sweeper{target: target, interval: interval, logger: l.With("module", "sweeper")}
}

// Run sweeps once per interval until ctx is cancelled. Failed sweeps are
// logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info(ctx, "session sweeper disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	n, err := s.target.SweepExpiredSessions(ctx)
	if err != nil {
		s.logger.Error(ctx, "session sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info(ctx, "expired sessions removed", "count", n)
	}
}
