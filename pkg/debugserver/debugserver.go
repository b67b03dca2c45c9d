// Package debugserver mounts the chi-routed debug/metrics HTTP side server:
// a liveness probe, a /debug/services listing of registered RPC services,
// and a Prometheus /metrics endpoint, grounded on the teacher repo's
// pkg/api router (middleware stack, route layout) generalized to the rpc
// domain.
package debugserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kora-zrpc/zrpc/rpc/descriptor"
)

// NewRouter builds the debug HTTP handler. services backs /debug/services;
// reg backs /metrics.
func NewRouter(services *descriptor.ServiceMap, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/debug/services", func(w http.ResponseWriter, r *http.Request) {
		listing := make(map[string][]string)
		for _, name := range services.ServiceNames() {
			listing[name] = services.MethodNames(name)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(listing)
	})

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return r
}
