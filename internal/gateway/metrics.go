package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	refreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inventory_console",
		Subsystem: "gateway",
		Name:      "token_refreshes_total",
		Help:      "Token refresh attempts, by outcome.",
	}, []string{"outcome"})

	refreshInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "inventory_console",
		Subsystem: "gateway",
		Name:      "token_refresh_in_flight",
		Help:      "1 while a token refresh is running.",
	})

	queuedRequests = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inventory_console",
		Subsystem: "gateway",
		Name:      "queued_requests_total",
		Help:      "Requests parked behind an in-flight token refresh.",
	})

	replayedRequests = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inventory_console",
		Subsystem: "gateway",
		Name:      "replayed_requests_total",
		Help:      "Parked requests retried with the refreshed token.",
	})

	notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inventory_console",
		Subsystem: "gateway",
		Name:      "notifications_total",
		Help:      "Server messages forwarded to the notification sink, by severity.",
	}, []string{"severity"})
)
