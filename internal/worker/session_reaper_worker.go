package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cmozaiq-saas/mvp-booster/internal/session"
)

// SessionReaper periodically prunes stale entries from the session store's
// per-user index. Session payloads expire on their own; only the index sets
// accumulate dead tokens.
type SessionReaper struct {
	store    session.Pruner
	interval time.Duration
}

// NewSessionReaper constructs a SessionReaper.
func NewSessionReaper(store session.Pruner, interval time.Duration) *SessionReaper {
	return &SessionReaper{store: store, interval: interval}
}

// Start begins the periodic reap loop until context is canceled.
func (w *SessionReaper) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting session reaper")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Session reaper stopped")
			return
		}
	}
}

func (w *SessionReaper) run(ctx context.Context) {
	if err := w.store.PruneUserIndex(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to prune session index")
	}
}
