package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"chatbot-research/experiment-api/internal/domain/session"
	"chatbot-research/experiment-api/internal/infrastructure/metrics"
)

// Reaper periodically sweeps idle active sessions to abandoned. Participants
// routinely close the survey tab without ending their session; without the
// sweep those rows would sit active forever.
type Reaper struct {
	sessions session.Repository
	log      zerolog.Logger
	wg       sync.WaitGroup
	stopChan chan struct{}

	interval    time.Duration
	idleTimeout time.Duration
}

// Config contains reaper configuration.
type Config struct {
	Interval    time.Duration
	IdleTimeout time.Duration
}

// NewReaper creates a session reaper.
func NewReaper(sessions session.Repository, cfg Config, log zerolog.Logger) *Reaper {
	return &Reaper{
		sessions:    sessions,
		log:         log.With().Str("component", "session-reaper").Logger(),
		stopChan:    make(chan struct{}),
		interval:    cfg.Interval,
		idleTimeout: cfg.IdleTimeout,
	}
}

// Start launches the periodic sweep loop.
func (r *Reaper) Start(ctx context.Context) {
	r.log.Info().
		Dur("interval", r.interval).
		Dur("idle_timeout", r.idleTimeout).
		Msg("starting session reaper")

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-r.stopChan:
				return
			case <-ticker.C:
				r.sweep(ctx)
			}
		}
	}()
}

// Stop signals the loop and waits for the in-flight sweep to finish.
func (r *Reaper) Stop() {
	close(r.stopChan)

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.log.Info().Msg("session reaper stopped")
	case <-time.After(30 * time.Second):
		r.log.Warn().Msg("session reaper shutdown timed out")
	}
}

func (r *Reaper) sweep(ctx context.Context) {
	now := time.Now().UTC()
	swept, err := r.sessions.ReapStale(ctx, now.Add(-r.idleTimeout), now)
	if err != nil {
		r.log.Error().Err(err).Msg("stale session sweep failed")
		return
	}
	if swept > 0 {
		metrics.SessionsAbandonedTotal.Add(float64(swept))
		r.log.Info().Int64("sessions", swept).Msg("abandoned idle sessions")
	}
}
