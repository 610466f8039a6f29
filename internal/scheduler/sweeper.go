package scheduler

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"
)

// JobEvicter is the slice of the report registry the sweeper needs.
type JobEvicter interface {
	EvictExpired(ttl time.Duration) []string
}

// Sweeper drops report jobs that finished more than TTL ago and deletes
// their artifacts. Keeps the job table bounded; the registry itself never
// evicts.
type Sweeper struct {
	Logger   *zap.Logger
	Reports  JobEvicter
	TTL      time.Duration
	Interval time.Duration
}

func NewSweeper(logger *zap.Logger, reports JobEvicter, ttl, interval time.Duration) *Sweeper {
	return &Sweeper{
		Logger:   logger,
		Reports:  reports,
		TTL:      ttl,
		Interval: interval,
	}
}

// Run starts the loop. Stops when ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	if s.Interval == 0 || s.TTL == 0 {
		s.Logger.Info("sweeper_disabled")
		return
	}
	t := time.NewTicker(s.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Logger.Info("sweeper_stopped")
			return
		case <-t.C:
			s.sweepOnce()
		}
	}
}

func (s *Sweeper) sweepOnce() {
	paths := s.Reports.EvictExpired(s.TTL)
	if len(paths) == 0 {
		return
	}
	removed := 0
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			s.Logger.Warn("sweep_remove_error", zap.String("path", p), zap.Error(err))
			continue
		}
		removed++
	}
	s.Logger.Info("sweep_evicted",
		zap.Int("artifacts", len(paths)),
		zap.Int("removed", removed),
	)
}
