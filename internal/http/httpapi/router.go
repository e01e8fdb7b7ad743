package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"studio/internal/http/handlers"
	"studio/internal/middleware"
)

type Options struct {
	Logger             zerolog.Logger
	CORSAllowedOrigins []string
	// RateLimitPerMin applies to generation requests per client IP.
	RateLimitPerMin int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.CORSAllowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/styles", app.Styles)

	r.Route("/v1/generations", func(r chi.Router) {
		r.With(middleware.RateLimit(opts.RateLimitPerMin, time.Minute)).Post("/", app.CreateGeneration)
		r.Get("/current", app.CurrentGeneration)
		r.Delete("/current", app.CancelGeneration)
	})

	r.Route("/v1/history", func(r chi.Router) {
		r.Get("/", app.ListHistory)
		r.Delete("/", app.ClearHistory)
		r.Get("/export", app.ExportHistory)
		r.Get("/{id}", app.GetHistoryEntry)
		r.Delete("/{id}", app.DeleteHistoryEntry)
	})

	return r
}
