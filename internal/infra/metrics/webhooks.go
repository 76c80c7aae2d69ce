package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		webhooksReceivedTotal,
		webhooksResultTotal,
		webhooksDuplicateTotal,
		webhookProcessingSeconds,
	)
}

var (
	webhooksReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhooks_received_total",
			Help: "Inbound webhook calls by provider.",
		},
		[]string{"provider"},
	)

	webhooksResultTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhooks_result_total",
			Help: "Reconciliation outcomes by provider (processed/normalization_error/store_error).",
		},
		[]string{"provider", "result"},
	)

	webhooksDuplicateTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhooks_duplicate_total",
			Help: "Deliveries whose external transaction id was already seen recently.",
		},
		[]string{"provider"},
	)

	webhookProcessingSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_processing_seconds",
			Help:    "End-to-end reconciliation latency per provider.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"provider"},
	)
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncWebhookReceived(provider string) {
	webhooksReceivedTotal.WithLabelValues(norm(provider)).Inc()
}

func IncWebhookResult(provider, result string) {
	webhooksResultTotal.WithLabelValues(norm(provider), norm(result)).Inc()
}

func IncWebhookDuplicate(provider string) {
	webhooksDuplicateTotal.WithLabelValues(norm(provider)).Inc()
}

func ObserveWebhookProcessing(provider string, seconds float64) {
	webhookProcessingSeconds.WithLabelValues(norm(provider)).Observe(seconds)
}
