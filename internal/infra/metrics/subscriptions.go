package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		subscriptionsExpired,
		subscriptionsActivated,
		paymentsRepaired,
	)
}

var (
	subscriptionsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_expired_total",
			Help: "Subscriptions transitioned to expired by the sweep.",
		},
	)

	subscriptionsActivated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriptions_activated_total",
			Help: "Subscription activations by actor (provider name, admin, system).",
		},
		[]string{"actor"},
	)

	paymentsRepaired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_repaired_total",
			Help: "Completed payments whose missing grant was replayed by the repair pass.",
		},
	)
)

func IncSubscriptionsExpired(n int64) {
	subscriptionsExpired.Add(float64(n))
}

func IncSubscriptionActivated(actor string) {
	subscriptionsActivated.WithLabelValues(norm(actor)).Inc()
}

func IncPaymentsRepaired(n int) {
	paymentsRepaired.Add(float64(n))
}
