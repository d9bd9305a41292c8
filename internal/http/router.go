package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docsift/internal/handlers"
	"docsift/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	DocumentService service.DocumentService
	DB              handlers.Pinger
	Stats           handlers.StatsProvider
	MaxUploadBytes  int64
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(CORS)

	documentHandler := handlers.NewDocumentHandler(deps.DocumentService, deps.MaxUploadBytes)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Stats)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)

		r.Route("/v1/documents", func(r chi.Router) {
			r.Post("/", documentHandler.Upload)
			r.Get("/", documentHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", documentHandler.Get)
				r.Delete("/", documentHandler.Delete)
				r.Get("/chunks", documentHandler.Chunks)
				r.Post("/search", documentHandler.Search)
			})
		})
	})

	return r
}
