package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// runClock emits a Tick every interval until ctx is done or emit fails.
func runClock(ctx context.Context, interval time.Duration, emit func(Event) error, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := emit(Tick{At: now}); err != nil {
				log.Debug().Err(err).Msg("clock stopped")
				return
			}
		}
	}
}
