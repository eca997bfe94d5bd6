package events

import (
	"context"
	"strings"

	"github.com/sirpyerre/user-management-api/internal/core/domain"
	"github.com/sirpyerre/user-management-api/internal/pkg/metrics"
)

// RegisterMetrics feeds the domain counters from the bus.
func RegisterMetrics(b *Bus) {
	b.Subscribe("**", func(_ context.Context, e domain.Event) {
		metrics.EventsPublishedTotal.WithLabelValues(e.Type).Inc()
	})

	b.Subscribe("user.*", func(_ context.Context, e domain.Event) {
		op := strings.TrimPrefix(e.Type, "user.")
		metrics.UserMutationsTotal.WithLabelValues(op).Inc()
	})

	b.Subscribe(domain.EventAuthAttempt, func(_ context.Context, e domain.Event) {
		result := "failure"
		if f, ok := e.Data.(map[string]any); ok && f["success"] == true {
			result = "success"
		}
		metrics.LoginAttemptsTotal.WithLabelValues(result).Inc()
	})
}
