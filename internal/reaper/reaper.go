// Package reaper periodically abandons sessions that went idle.
package reaper

import (
	"context"
	"time"

	"github.com/abhisek/adaptiq/internal/logger"
)

// Abandoner is the part of the session service the reaper drives.
type Abandoner interface {
	AbandonIdle(ctx context.Context, idle time.Duration) (int, error)
}

// Reaper abandons sessions idle for longer than Idle, checking every
// Interval.
type Reaper struct {
	svc      Abandoner
	idle     time.Duration
	interval time.Duration
	log      *logger.Logger
}

func New(svc Abandoner, idle, interval time.Duration, log *logger.Logger) *Reaper {
	if log == nil {
		log = logger.Nop()
	}
	return &Reaper{svc: svc, idle: idle, interval: interval, log: log}
}

// Start runs the reaper in a goroutine until ctx is cancelled. The
// returned channel closes once the goroutine has exited.
func (r *Reaper) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	ticker := time.NewTicker(r.interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		r.log.Info("reaper started", "interval", r.interval, "idle", r.idle)

		for {
			select {
			case <-ticker.C:
				r.Sweep(ctx)
			case <-ctx.Done():
				r.log.Info("reaper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
	return done
}

// Sweep runs one pass and returns how many sessions were abandoned.
func (r *Reaper) Sweep(ctx context.Context) int {
	n, err := r.svc.AbandonIdle(ctx, r.idle)
	if err != nil {
		r.log.Error("reaper sweep failed", "abandoned", n, "error", err)
		return n
	}
	if n > 0 {
		r.log.Info("reaper abandoned idle sessions", "count", n)
	}
	return n
}
