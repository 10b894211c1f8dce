package echoweb

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/uptpik/pikweb/core/guard"
)

var (
	loginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pikweb_login_attempts_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)

	guardDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pikweb_guard_decisions_total",
			Help: "Route guard decisions by outcome",
		},
		[]string{"outcome"},
	)

	eventCreations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pikweb_event_creations_total",
			Help: "Event creation submissions by result",
		},
		[]string{"result"},
	)

	backendRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pikweb_backend_request_duration_seconds",
			Help:    "Duration of proxied backend calls",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func observeLogin(ok bool) {
	loginAttempts.WithLabelValues(resultLabel(ok)).Inc()
}

func observeGuardDecision(o guard.Outcome) {
	guardDecisions.WithLabelValues(o.String()).Inc()
}

func observeEventCreation(ok bool) {
	eventCreations.WithLabelValues(resultLabel(ok)).Inc()
}

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
