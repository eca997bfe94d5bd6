// Package metrics defines the custom Prometheus metrics of the user
// management API. HTTP request metrics come from echoprometheus; the metrics
// here describe domain activity and are fed from the event bus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "usermgmt"

// ── Event metrics ─────────────────────────────────────────────────────────────

// EventsPublishedTotal counts bus events by type (e.g. "user.created").
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of events published on the in-process bus.",
	},
	[]string{"type"},
)

// ── User metrics ──────────────────────────────────────────────────────────────

// UserMutationsTotal counts directory mutations.
// Label:
//   - op: "created", "updated" or "deleted"
var UserMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_mutations_total",
		Help:      "Total number of user create/update/delete operations.",
	},
	[]string{"op"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"result"},
)

// ── Cache metrics ─────────────────────────────────────────────────────────────

// CacheLookupsTotal counts result cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var CacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Total number of result cache lookups, by outcome.",
	},
	[]string{"result"},
)
