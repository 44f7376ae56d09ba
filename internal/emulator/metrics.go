package emulator

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry  *prometheus.Registry
	published *prometheus.CounterVec
	delivered *prometheus.CounterVec
	requests  *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pubsub_emulator",
			Name:      "messages_published_total",
			Help:      "Messages accepted by publish, by topic.",
		}, []string{"topic"}),
		delivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pubsub_emulator",
			Name:      "messages_delivered_total",
			Help:      "Messages returned by pull, by subscription.",
		}, []string{"subscription"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pubsub_emulator",
			Name:      "api_requests_total",
			Help:      "REST API requests, by operation and status code.",
		}, []string{"operation", "code"}),
	}
	m.registry.MustRegister(m.published, m.delivered, m.requests)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
