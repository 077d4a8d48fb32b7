package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		webhookEventsTotal,
		webhookSignatureFailures,
	)
}

var (
	webhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Gateway webhook deliveries by event type and outcome (processed/ignored/failed).",
		},
		[]string{"event", "outcome"},
	)

	webhookSignatureFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_signature_failures_total",
			Help: "Webhook deliveries rejected for an invalid signature.",
		},
	)
)

func IncWebhookEvent(event, outcome string) {
	webhookEventsTotal.WithLabelValues(norm(event), norm(outcome)).Inc()
}

func IncSignatureFailure() {
	webhookSignatureFailures.Inc()
}
