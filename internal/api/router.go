package api

import (
	"net/http"
	"route-sequencer-service/internal/api/handlers"
	"route-sequencer-service/internal/platform/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
// limiter may be nil.
func NewRouter(routes *handlers.RouteHandler, limiter *TenantLimiter) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", handlers.Health)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("/v1/orders/optimize", limiter.Wrap("/v1/orders/optimize", routes.Optimize))
	mux.HandleFunc("/v1/orders/sequence", limiter.Wrap("/v1/orders/sequence", routes.SaveSequence))
	mux.HandleFunc("/v1/orders/loading-sheet", routes.LoadingSheet)

	return requestIDMiddleware(loggingMiddleware(mux, mux))
}
