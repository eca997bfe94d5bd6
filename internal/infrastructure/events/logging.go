package events

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/user-management-api/internal/core/domain"
)

// RegisterLogging subscribes the monitoring loggers: every event at debug
// level, lifecycle events at info and errors at error.
func RegisterLogging(b *Bus, log zerolog.Logger) {
	b.Subscribe("**", func(_ context.Context, e domain.Event) {
		log.Debug().
			Str("event", e.Type).
			Str("correlation_id", e.CorrelationID).
			Interface("payload", e.Data).
			Msg("event emitted")
	})

	for _, t := range []string{
		domain.EventUserCreated,
		domain.EventUserUpdated,
		domain.EventUserDeleted,
		domain.EventDataFetched,
		domain.EventAuthLogin,
		domain.EventAuthLogout,
	} {
		b.Subscribe(t, func(_ context.Context, e domain.Event) {
			ev := log.Info().Str("event", e.Type).Str("correlation_id", e.CorrelationID)
			if f, ok := e.Data.(map[string]any); ok {
				ev = ev.Fields(f)
			} else if u, ok := e.Data.(domain.User); ok {
				ev = ev.Str("user_id", u.ID)
			}
			ev.Msg("event received")
		})
	}

	b.Subscribe(domain.EventErrorOccurred, func(_ context.Context, e domain.Event) {
		log.Error().
			Str("event", e.Type).
			Str("correlation_id", e.CorrelationID).
			Interface("error", e.Data).
			Msg("error event received")
	})
}
