package game

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// =============================================================================
// TIMER MANAGEMENT
// =============================================================================

// RunReaper sweeps never-joined rooms older than ttl every interval until
// ctx is cancelled.
func (s *RoomStore) RunReaper(ctx context.Context, interval time.Duration, ttl time.Duration) error {
	if interval <= 0 || ttl <= 0 {
		log.Info().Msg("[RunReaper] idle room reaping disabled")
		<-ctx.Done()
		return nil
	}

	log.Info().Dur("interval", interval).Dur("ttl", ttl).Msg("[RunReaper] started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.ReapIdle(ttl)
		case <-ctx.Done():
			log.Info().Msg("[RunReaper] stopped")
			return nil
		}
	}
}
