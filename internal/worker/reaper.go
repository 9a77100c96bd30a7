// Package worker hosts the long-running reaper loop.
package worker

import (
	"context"
	"time"

	"intro-auction/internal/core/ports"

	"github.com/rs/zerolog"
)

// ReaperConfig controls the loop's pacing.
type ReaperConfig struct {
	BatchSize    int
	IdleInterval time.Duration
	LeaseTTL     time.Duration
}

// Reaper runs reaper cycles back to back while work remains and sleeps for
// IdleInterval once a cycle comes back short. With a lease only the holder runs.
type Reaper struct {
	svc    ports.ReaperService
	lease  ports.ReaperLease // nil = single instance, no coordination
	holder string
	cfg    ReaperConfig
	log    zerolog.Logger

	sleep func(ctx context.Context, d time.Duration) bool
	now   func() time.Time
}

func NewReaper(svc ports.ReaperService, lease ports.ReaperLease, holder string, cfg ReaperConfig, log zerolog.Logger) *Reaper {
	return &Reaper{
		svc:    svc,
		lease:  lease,
		holder: holder,
		cfg:    cfg,
		log:    log.With().Str("component", "reaper").Str("holder", holder).Logger(),
		sleep:  sleepCtx,
		now:    time.Now,
	}
}

// Run blocks until ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	r.log.Info().
		Int("batch_size", r.cfg.BatchSize).
		Dur("idle_interval", r.cfg.IdleInterval).
		Msg("reaper started")
	defer r.releaseLease()

	leader := false
	for ctx.Err() == nil {
		if r.lease != nil {
			ok, err := r.lease.Acquire(ctx, r.holder, r.cfg.LeaseTTL)
			if err != nil {
				r.log.Warn().Err(err).Msg("lease acquire failed")
				r.sleep(ctx, r.cfg.IdleInterval)
				continue
			}
			if ok != leader {
				r.log.Info().Bool("leader", ok).Msg("lease changed hands")
				leader = ok
			}
			if !ok {
				r.sleep(ctx, r.cfg.IdleInterval)
				continue
			}
		}

		if idle := r.cycle(ctx); idle {
			r.sleep(ctx, r.cfg.IdleInterval)
		}
	}
	r.log.Info().Msg("reaper stopped")
}

// cycle runs one batch and reports whether the loop should idle: after an
// error, or when the batch resolved fewer recipients than it asked for.
// Failed recipients keep their next_check, so they never count as progress.
func (r *Reaper) cycle(ctx context.Context) bool {
	start := r.now()
	stats, err := r.svc.RunCycle(ctx, r.cfg.BatchSize)
	elapsed := r.now().Sub(start)
	if err != nil {
		if ctx.Err() == nil {
			r.log.Error().Err(err).Msg("reaper cycle failed")
		}
		return true
	}

	if stats.Resolved+stats.Failed == 0 {
		return true
	}

	perHour := 0.0
	if elapsed > 0 {
		perHour = float64(stats.Resolved) / elapsed.Hours()
	}
	r.log.Info().
		Int("resolved", stats.Resolved).
		Int("failed", stats.Failed).
		Int("won", stats.Won).
		Int("lost", stats.Lost).
		Int("timed_out", stats.TimedOut).
		Str("refunded", stats.RefundedTotal.String()).
		Str("settled", stats.SettledTotal.String()).
		Dur("elapsed", elapsed).
		Float64("recipients_per_hour", perHour).
		Msg("reaper cycle")
	return stats.Resolved < r.cfg.BatchSize
}

func (r *Reaper) releaseLease() {
	if r.lease == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.lease.Release(ctx, r.holder); err != nil {
		r.log.Warn().Err(err).Msg("lease release failed")
	}
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
