package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"patchnotes/internal/http/handlers"
	"patchnotes/internal/infra"
	"patchnotes/internal/middleware"
)

// NewRouter assembles the mock gateway's routes and middleware chain.
func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.CORS([]string{"http://localhost:5173", "http://localhost:3000"}),
		middleware.RateLimit(cfg.RateLimitPerMin, time.Minute),
	)

	r.Get("/v1/healthz", app.Health)
	r.Post("/auth/refresh", app.AuthRefresh)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/payments", func(r chi.Router) {
		r.Use(middleware.RequireAuth(cfg.JWTSecret))
		r.Post("/stkpush", app.PaymentsSTKPush)
		r.Get("/{checkoutRequestID}/status", app.PaymentsStatus)
		r.Get("/test-mpesa", app.PaymentsTestMpesa)
		r.Post("/test-phone", app.PaymentsTestPhone)
		r.Post("/diagnostics", app.PaymentsDiagnostics)
	})

	return r
}
