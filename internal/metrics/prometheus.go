// Package metrics records API client activity.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/examshare/examshare-client/internal/model"
)

const namespace = "examshare_client"

// PrometheusRecorder records client metrics in Prometheus counters.
type PrometheusRecorder struct {
	requestsTotal *prometheus.CounterVec
	refreshTotal  *prometheus.CounterVec
	replaysTotal  *prometheus.CounterVec
}

// NewPrometheusRecorder registers the client counters on the default registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	return NewPrometheusRecorderWithRegistry(prometheus.DefaultRegisterer)
}

// NewPrometheusRecorderWithRegistry registers the client counters on reg.
func NewPrometheusRecorderWithRegistry(reg prometheus.Registerer) *PrometheusRecorder {
	requestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Total API requests sent, by method and response status",
	}, []string{"method", "status"})

	refreshTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_total",
		Help:      "Total calls to the token refresh endpoint, by result",
	}, []string{"result"})

	replaysTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "replays_total",
		Help:      "Total requests replayed after a token refresh",
	}, []string{"result"})

	reg.MustRegister(requestsTotal, refreshTotal, replaysTotal)

	return &PrometheusRecorder{
		requestsTotal: requestsTotal,
		refreshTotal:  refreshTotal,
		replaysTotal:  replaysTotal,
	}
}

// RecordRequest counts a request that got an HTTP response.
func (p *PrometheusRecorder) RecordRequest(method string, statusCode int) {
	p.requestsTotal.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
}

// RecordTransportError counts a request that got no HTTP response.
func (p *PrometheusRecorder) RecordTransportError(method string) {
	p.requestsTotal.WithLabelValues(method, "error").Inc()
}

func (p *PrometheusRecorder) RecordRefresh(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	p.refreshTotal.WithLabelValues(result).Inc()
}

func (p *PrometheusRecorder) RecordReplay(statusCode int) {
	p.replaysTotal.WithLabelValues(ReplayResult(statusCode)).Inc()
}

// ReplayResult buckets the status of a replayed request.
func ReplayResult(statusCode int) string {
	switch {
	case statusCode == 401:
		return "unauthorized"
	case statusCode >= 200 && statusCode < 400:
		return "success"
	default:
		return "error"
	}
}

var _ model.MetricsRecorder = (*PrometheusRecorder)(nil)
