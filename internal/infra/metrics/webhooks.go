package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		webhooksTotal,
		webhookDuration,
	)
}

var (
	webhooksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhooks_total",
			Help: "Webhook deliveries by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	webhookDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_processing_seconds",
			Help:    "End-to-end webhook processing time by provider.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)
)

func IncWebhook(provider, outcome string) {
	webhooksTotal.WithLabelValues(norm(provider), norm(outcome)).Inc()
}

func ObserveWebhookDuration(provider string, seconds float64) {
	webhookDuration.WithLabelValues(norm(provider)).Observe(seconds)
}
