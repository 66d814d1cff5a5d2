package httpapi

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Bhasvanth-Dev9380/ad-generator/internal/http/handlers"
	"github.com/Bhasvanth-Dev9380/ad-generator/internal/infra"
	"github.com/Bhasvanth-Dev9380/ad-generator/internal/middleware"
)

// NewRouter assembles the service routes with the standard middleware chain.
func NewRouter(app *handlers.App, logger infra.Logger, allowedOrigins []string) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimiddleware.RealIP, chimiddleware.Recoverer)
	r.Use(middleware.Logger(logger))
	if len(allowedOrigins) > 0 {
		r.Use(middleware.CORS(allowedOrigins))
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/api/creatives", func(r chi.Router) {
		r.Post("/", app.CreativesGenerate)
		r.Get("/{doc_id}", app.CreativeStatus)
	})

	return r
}
