package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/adapters/security"
)

func NewRouter(handler *Handler, verifier *security.Verifier, gatherer prometheus.Gatherer, logger *log.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware(logger))

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authMiddleware(verifier))

		r.Get("/integrations", handler.listIntegrations)
		r.Post("/checks", handler.checkMany)
		r.Post("/checks/{name}", handler.checkOne)

		r.Get("/dashboard/overview", handler.overview)
		r.Get("/dashboard/integrations/{name}", handler.integrationDetails)
		r.Get("/dashboard/realtime", handler.realTime)
		r.Get("/dashboard/performance", handler.performance)
		r.Get("/dashboard/costs", handler.costs)
		r.Get("/dashboard/alerts", handler.alerts)

		r.Group(func(r chi.Router) {
			r.Use(requireOperator(verifier))
			r.Post("/monitor/{name}/start", handler.startMonitor)
			r.Post("/monitor/{name}/stop", handler.stopMonitor)
			r.Delete("/dashboard/cache", handler.clearCache)
			r.Get("/audit", handler.auditTrail)
		})
	})
	return r
}
