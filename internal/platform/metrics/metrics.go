package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds application-level Prometheus metrics.
type Metrics struct {
	UsersRegistered prometheus.Counter
	RequestLatency  *prometheus.HistogramVec
}

// New creates and registers all application-level Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dexrank_users_registered_total",
			Help: "Total number of users registered in the system",
		}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dexrank_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// IncrementUsersRegistered increments the registered users counter by 1.
func (m *Metrics) IncrementUsersRegistered() {
	m.UsersRegistered.Inc()
}

// ObserveRequest records one request's latency.
func (m *Metrics) ObserveRequest(route, status string, seconds float64) {
	m.RequestLatency.WithLabelValues(route, status).Observe(seconds)
}
