package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carryon_http_requests_total",
		Help: "HTTP requests processed, labelled by method, route and status.",
	}, []string{"method", "path", "status"})

	PostsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carryon_posts_created_total",
		Help: "Posts created, labelled by kind (traveller or sender).",
	}, []string{"kind"})

	RequestsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carryon_requests_created_total",
		Help: "Luggage requests opened.",
	})

	RequestTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carryon_request_transitions_total",
		Help: "Request lifecycle transitions, labelled by resulting status.",
	}, []string{"status"})

	MessagesSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carryon_messages_sent_total",
		Help: "Conversation messages stored, labelled by message type.",
	}, []string{"type"})

	OutboxPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carryon_outbox_events_published_total",
		Help: "Outbox events successfully published to the broker.",
	})

	OutboxFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carryon_outbox_events_failed_total",
		Help: "Outbox events that exhausted their retries.",
	})
)
