package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/five82/crux/internal/state"
)

const (
	defaultHealthInterval = 10 * time.Second
	maxBackoff            = 60 * time.Second
)

// StartHealthPoller launches a background goroutine that records backend
// reachability in the store. Checks back off while the backend stays
// unreachable. It returns immediately.
func StartHealthPoller(ctx context.Context, store *state.Store, prober Prober, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		interval = defaultHealthInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	go func() {
		for {
			failures := checkHealth(ctx, store, prober, logger)
			timer := time.NewTimer(calculateBackoff(failures, interval))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

// checkHealth probes once and returns the consecutive failure count.
func checkHealth(ctx context.Context, store *state.Store, prober Prober, logger *zap.Logger) int {
	base := prober.Endpoint().BaseURL()
	if err := prober.Probe(ctx); err != nil {
		if ctx.Err() != nil {
			return store.Snapshot().Backend.Failures
		}
		store.SetBackend(base, false, Describe(err))
		logger.Debug("backend health check failed", zap.String("endpoint", base), zap.Error(err))
		return store.Snapshot().Backend.Failures
	}
	store.SetBackend(base, true, "")
	return 0
}

// calculateBackoff doubles the interval per consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
