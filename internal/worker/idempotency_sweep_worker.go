package worker

import (
    "context"
    "time"

    "github.com/rs/zerolog/log"
)

// Sweeper removes expired entries and reports how many were dropped.
type Sweeper interface {
    Sweep() int
}

// IdempotencySweepWorker evicts expired idempotency keys from the in-memory store.
type IdempotencySweepWorker struct {
    store    Sweeper
    interval time.Duration
}

// NewIdempotencySweepWorker constructs an IdempotencySweepWorker.
func NewIdempotencySweepWorker(store Sweeper, interval time.Duration) *IdempotencySweepWorker {
    return &IdempotencySweepWorker{
        store:    store,
        interval: interval,
    }
}

// Start begins the sweep loop and listens for context cancellation.
func (w *IdempotencySweepWorker) Start(ctx context.Context) {
    if w.interval <= 0 {
        log.Info().Msg("Idempotency sweep worker disabled")
        return
    }
    log.Info().Dur("interval", w.interval).Msg("Starting idempotency sweep worker")

    ticker := time.NewTicker(w.interval)
    defer ticker.Stop()

    for {
        select {
        case <-ticker.C:
            w.run()
        case <-ctx.Done():
            log.Info().Msg("Idempotency sweep worker stopped")
            return
        }
    }
}

func (w *IdempotencySweepWorker) run() {
    if n := w.store.Sweep(); n > 0 {
        log.Debug().Int("removed", n).Msg("Expired idempotency keys removed")
    }
}
