package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"sermon-subscription-billing/internal/domain/model"
)

func init() {
	register(
		subscriptionTransitionsTotal,
		subscriptionsTotal,
		accountsCreatedTotal,
	)
}

var (
	subscriptionTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_transitions_total",
			Help: "State machine transitions (created/cancelled/noop).",
		},
		[]string{"transition"},
	)

	subscriptionsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "subscriptions_total",
			Help: "Current number of subscriptions by status.",
		},
		[]string{"status"}, // 'active', 'cancelled'
	)

	accountsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "accounts_created_total",
			Help: "Accounts created from purchase events.",
		},
	)
)

func IncSubscriptionTransition(transition string) {
	subscriptionTransitionsTotal.WithLabelValues(norm(transition)).Inc()
}

func IncAccountsCreated() {
	accountsCreatedTotal.Inc()
}

func SetSubscriptionsTotal(counts map[model.SubscriptionStatus]int) {
	statuses := []model.SubscriptionStatus{
		model.SubscriptionStatusActive,
		model.SubscriptionStatusCancelled,
	}
	for _, status := range statuses {
		subscriptionsTotal.WithLabelValues(string(status)).Set(float64(counts[status]))
	}
}
