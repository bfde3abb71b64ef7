package checkout

import "github.com/prometheus/client_golang/prometheus"

var pollAttemptsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_payment_poll_attempts_total",
		Help: "Payment status poll attempts by outcome",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(pollAttemptsTotal)
}
