// Package metrics exposes the prometheus counters and gauges zrpcserver
// publishes on its debug HTTP surface, grounded on the teacher repo's
// promauto-based Prometheus wiring.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors groups the counters/gauges zrpcserver updates as it dispatches
// calls and probes endpoints.
type Collectors struct {
	RPCCallsTotal       *prometheus.CounterVec
	RPCCallDuration     *prometheus.HistogramVec
	HeartbeatEvictions  *prometheus.CounterVec
	CacheHitRate        prometheus.Gauge
	RegisteredEndpoints prometheus.Gauge
}

// New registers a fresh set of collectors against reg.
func New(reg *prometheus.Registry) *Collectors {
	f := promauto.With(reg)
	return &Collectors{
		RPCCallsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "zrpc_calls_total",
			Help: "Total RPC calls dispatched, by service, method and outcome.",
		}, []string{"service", "method", "outcome"}),
		RPCCallDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zrpc_call_duration_milliseconds",
			Help:    "RPC call handling duration in milliseconds.",
			Buckets: []float64{0.5, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"service", "method"}),
		HeartbeatEvictions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "zrpc_heartbeat_evictions_total",
			Help: "Endpoints evicted by the heartbeat supervisor for failing to respond.",
		}, []string{"service_key"}),
		CacheHitRate: f.NewGauge(prometheus.GaugeOpts{
			Name: "zrpc_cache_hit_rate",
			Help: "Most recently observed cache hit rate.",
		}),
		RegisteredEndpoints: f.NewGauge(prometheus.GaugeOpts{
			Name: "zrpc_heartbeat_registered_endpoints",
			Help: "Number of endpoints currently tracked by the heartbeat supervisor.",
		}),
	}
}

// ObserveCall records the outcome and duration of one dispatched RPC call.
func (c *Collectors) ObserveCall(service, method, outcome string, durationMs float64) {
	if c == nil {
		return
	}
	c.RPCCallsTotal.WithLabelValues(service, method, outcome).Inc()
	c.RPCCallDuration.WithLabelValues(service, method).Observe(durationMs)
}

// ObserveEviction records a heartbeat eviction for serviceKey.
func (c *Collectors) ObserveEviction(serviceKey string) {
	if c == nil {
		return
	}
	c.HeartbeatEvictions.WithLabelValues(serviceKey).Inc()
}
