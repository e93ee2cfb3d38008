// Package api assembles the HTTP surface: middleware, product routes,
// dashboard routes and the optional metrics endpoint.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ProductBoard/internal/catalog"
	"ProductBoard/internal/dashboard"
	"ProductBoard/pkg/kit"
)

const rateWindow = time.Minute

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	RateLimitPerMin int
}

func NewHandler(s *catalog.Server, deps HTTPDeps) http.Handler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.NotFound(kit.NotFound)
	r.MethodNotAllowed(kit.MethodNotAllowed)

	setupMiddleware(r, deps)
	setupMetrics(r, s, deps)

	dashboard.Register(r)
	s.Register(r, kit.RateLimit(deps.RateLimitPerMin, rateWindow))
	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(kit.RequestID)
	r.Use(kit.Recoverer(deps.Log))
	r.Use(kit.Logging(deps.Log))
	r.Use(kit.CORS)
	r.Use(kit.SecureHeaders())
}

func setupMetrics(r *chi.Mux, s *catalog.Server, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.RoutePattern))
	if s.Metrics == nil {
		s.Metrics = metrics
	}

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}
