package api

import "github.com/prometheus/client_golang/prometheus"

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_api_requests_total",
			Help: "Total API requests by method and response status",
		},
		[]string{"method", "status"},
	)

	tokenRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_token_refresh_total",
			Help: "Total access-token refresh attempts by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal)
	prometheus.MustRegister(tokenRefreshTotal)
}
