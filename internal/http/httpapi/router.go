package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"donations/internal/http/handlers"
	"donations/internal/infra"
	"donations/internal/metrics"
	"donations/internal/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RealIP(cfg.TrustedProxyHops),
		middleware.RequestID(logger),
		chimw.Recoverer,
		middleware.Logger(logger),
	)
	r.MethodNotAllowed(app.MethodNotAllowed)

	r.Route("/api/process-donation", func(r chi.Router) {
		r.Use(
			middleware.CORS(cfg.CORSAllowedOrigins, http.MethodPost, http.MethodOptions),
			middleware.RateLimit(cfg.RateLimitPerMin, time.Minute),
		)
		r.MethodNotAllowed(app.MethodNotAllowed)
		r.Post("/", app.ProcessDonation)
	})

	r.Route("/api/pesapal-ipn", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.CORSAllowedOrigins, http.MethodGet, http.MethodPost, http.MethodOptions))
		r.MethodNotAllowed(app.MethodNotAllowed)
		r.Post("/", app.Acknowledge(app.ProcessIPN))
	})

	r.Get("/api", app.APIRoot)
	r.Get("/health", app.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Everything else is the donation site itself.
	r.Get("/*", http.FileServer(http.Dir(cfg.StaticDir)).ServeHTTP)

	return r
}
