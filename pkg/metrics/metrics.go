package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	EventsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "syncpad", Name: "events_processed_total", Help: "Number of inbound sync events handled, by event type."},
		[]string{"event"},
	)
	VersionConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "syncpad", Name: "version_conflicts_total", Help: "Number of edits rejected by the version gate."},
	)
	BroadcastsSent = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "syncpad", Name: "broadcasts_sent_total", Help: "Number of outbound messages handed to the transport."},
	)
	ConnectedSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "syncpad", Name: "connected_sessions", Help: "Currently connected websocket sessions."},
	)
	OpenDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "syncpad", Name: "open_documents", Help: "Documents currently held in the store."},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "syncpad", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "syncpad", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(EventsProcessed)
	reg.MustRegister(VersionConflicts)
	reg.MustRegister(BroadcastsSent)
	reg.MustRegister(ConnectedSessions)
	reg.MustRegister(OpenDocuments)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
