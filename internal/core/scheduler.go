package core

// scheduler.go runs background maintenance for open views.
//
// Views are held in memory and expire once unused for longer than the
// configured TTL. The sweeper runs until its context is cancelled and only
// logs when it removes something.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is how often expired views are removed.
const DefaultSweepInterval = time.Minute

// StartViewSweeper removes expired views every interval until ctx is done.
// It blocks, so callers run it in its own goroutine.
func (s *Service) StartViewSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	slog.Info("view sweeper started",
		"interval", interval.String(),
		"view_ttl", s.opts.ViewTTL.String(),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("view sweeper stopped")
			return
		case <-ticker.C:
			s.runSweep()
		}
	}
}

// runSweep performs one sweep cycle.
func (s *Service) runSweep() {
	start := time.Now()
	removed := s.SweepViews()
	if removed == 0 {
		return
	}
	slog.Info("expired views removed",
		"views_removed", removed,
		"views_open", s.ViewCount(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
