/*
janitor.go - Idle session expiry

PURPOSE:
  Periodically deletes sessions that have not been saved for longer than
  MaxAge. Redis expires keys on its own; the janitor covers the memory,
  sqlite and postgres stores.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Uses only store.List and store.Delete, so it works with any backend
  - Takes the handler's per-session lock before deleting, so a command in
    flight is never cut off mid-save

CONFIGURATION:
  - MaxAge: Idle time before a session is dropped (SESSION_TTL)
  - CheckInterval: How often to sweep (default: 10 minutes)

USAGE:
  j := NewSessionJanitor(handler, ttl)
  j.Start()
  // ... later
  j.Stop()

SEE ALSO:
  - handlers.go: DeleteGame (manual deletion)
*/
package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/warp/avalanche-engine/store"
)

// SessionJanitor deletes idle sessions.
type SessionJanitor struct {
	Handler       *Handler
	MaxAge        time.Duration
	CheckInterval time.Duration

	now    func() time.Time
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSessionJanitor creates a janitor. A zero maxAge disables it.
func NewSessionJanitor(h *Handler, maxAge time.Duration) *SessionJanitor {
	return &SessionJanitor{
		Handler:       h,
		MaxAge:        maxAge,
		CheckInterval: 10 * time.Minute,
		now:           time.Now,
	}
}

// Start begins the sweep loop.
func (j *SessionJanitor) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()

	log := j.Handler.Logger.With().Str("component", "janitor").Logger()
	if j.MaxAge <= 0 {
		log.Info().Msg("session expiry disabled")
		return
	}
	if j.ticker != nil {
		return
	}

	j.ticker = time.NewTicker(j.CheckInterval)
	j.stop = make(chan struct{})
	j.wg.Add(1)
	go j.run()

	log.Info().Dur("max_age", j.MaxAge).Dur("interval", j.CheckInterval).Msg("session janitor started")
}

// Stop stops the sweep loop and waits for a running sweep to finish.
func (j *SessionJanitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.ticker == nil {
		return
	}
	j.ticker.Stop()
	close(j.stop)
	j.wg.Wait()
	j.ticker = nil
}

func (j *SessionJanitor) run() {
	defer j.wg.Done()

	for {
		select {
		case <-j.ticker.C:
			j.Sweep(context.Background())
		case <-j.stop:
			return
		}
	}
}

// Sweep deletes every session idle for longer than MaxAge and returns how
// many were removed.
func (j *SessionJanitor) Sweep(ctx context.Context) int {
	h := j.Handler
	log := h.Logger.With().Str("component", "janitor").Logger()

	sums, err := h.Store.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to list sessions")
		return 0
	}

	cutoff := j.now().Add(-j.MaxAge)
	removed := 0
	for _, sum := range sums {
		if !sum.UpdatedAt.Before(cutoff) {
			continue
		}

		deleted, err := j.expire(ctx, sum.ID, cutoff)
		if err != nil {
			log.Error().Err(err).Str("session_id", sum.ID).Msg("failed to delete idle session")
			continue
		}
		if deleted {
			removed++
		}
	}

	if removed > 0 {
		log.Info().Int("removed", removed).Msg("idle sessions expired")
	}
	return removed
}

// expire re-reads the session under its lock, since a command may have
// saved it after the listing.
func (j *SessionJanitor) expire(ctx context.Context, id string, cutoff time.Time) (bool, error) {
	h := j.Handler
	unlock := h.locks.lock(id)
	defer unlock()

	rec, err := h.Store.Load(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !rec.UpdatedAt.Before(cutoff) {
		return false, nil
	}

	if err := h.Store.Delete(ctx, id); err != nil {
		return false, err
	}
	h.locks.forget(id)
	return true, nil
}
