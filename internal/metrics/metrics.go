package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// PaymentOperationsTotal counts ledger operations by outcome.
	PaymentOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paygate",
			Name:      "payment_operations_total",
			Help:      "Payment operations by operation and resulting status or error code",
		},
		[]string{"operation", "outcome"},
	)

	TokensIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paygate",
			Name:      "tokens_issued_total",
			Help:      "Token requests by outcome",
		},
		[]string{"outcome"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "paygate",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status",
			Buckets: []float64{
				0.001, 0.005, 0.01, 0.02, 0.05, 0.1,
				0.2, 0.5, 1, 2, 5,
			},
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	prometheus.MustRegister(PaymentOperationsTotal, TokensIssuedTotal, HTTPRequestDuration)
}

// IncPayment records one payment operation.
func IncPayment(operation, outcome string) {
	PaymentOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

// IncToken records one token request.
func IncToken(outcome string) {
	TokensIssuedTotal.WithLabelValues(outcome).Inc()
}

func ObserveHTTP(method, route, status string, seconds float64) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(seconds)
}
