package ratelimit

import "github.com/prometheus/client_golang/prometheus"

var (
	// events counts RecordEvent calls by limiter.
	events = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rsvp_ratelimit_events_total",
			Help: "Events recorded against abuse counters.",
		},
		[]string{"limiter"},
	)

	// throttled counts checks that found the subject over its threshold.
	throttled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rsvp_ratelimit_throttled_total",
			Help: "Checks that found a throttled subject.",
		},
		[]string{"limiter"},
	)

	// storeErrors counts counter store failures that were failed open.
	storeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rsvp_ratelimit_store_errors_total",
			Help: "Counter store errors swallowed by the limiter.",
		},
		[]string{"limiter", "op"},
	)
)

func init() {
	prometheus.MustRegister(events, throttled, storeErrors)
}
