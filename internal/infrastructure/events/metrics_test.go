package events

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/sirpyerre/user-management-api/internal/core/domain"
	"github.com/sirpyerre/user-management-api/internal/pkg/metrics"
)

func TestRegisterMetrics(t *testing.T) {
	b := NewBus(zerolog.Nop())
	RegisterMetrics(b)
	ctx := context.Background()

	created := testutil.ToFloat64(metrics.UserMutationsTotal.WithLabelValues("created"))
	published := testutil.ToFloat64(metrics.EventsPublishedTotal.WithLabelValues(domain.EventUserCreated))
	success := testutil.ToFloat64(metrics.LoginAttemptsTotal.WithLabelValues("success"))
	failure := testutil.ToFloat64(metrics.LoginAttemptsTotal.WithLabelValues("failure"))

	b.Publish(ctx, domain.EventUserCreated, domain.User{ID: "user_1"})
	b.Publish(ctx, domain.EventAuthAttempt, map[string]any{"success": true})
	b.Publish(ctx, domain.EventAuthAttempt, map[string]any{"success": false})

	assert.Equal(t, created+1, testutil.ToFloat64(metrics.UserMutationsTotal.WithLabelValues("created")))
	assert.Equal(t, published+1, testutil.ToFloat64(metrics.EventsPublishedTotal.WithLabelValues(domain.EventUserCreated)))
	assert.Equal(t, success+1, testutil.ToFloat64(metrics.LoginAttemptsTotal.WithLabelValues("success")))
	assert.Equal(t, failure+1, testutil.ToFloat64(metrics.LoginAttemptsTotal.WithLabelValues("failure")))
}
