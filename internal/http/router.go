package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/solutionspma/yocreator-sub001/internal/http/handlers"
	"github.com/solutionspma/yocreator-sub001/internal/middleware"
)

// Options tunes the router's middleware. Zero values disable the
// corresponding middleware.
type Options struct {
	AllowedOrigins []string
	// Per-client cap on job invocations within ProcessWindow.
	ProcessLimit  int
	ProcessWindow time.Duration
}

// NewRouter wires the invocation surface.
func NewRouter(app *handlers.App, opts Options) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer, middleware.Logger(app.Logger))
	if len(opts.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(opts.AllowedOrigins))
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if opts.ProcessLimit > 0 && opts.ProcessWindow > 0 {
				r.Use(middleware.RateLimit(opts.ProcessLimit, opts.ProcessWindow))
			}
			r.Post("/process", app.ProcessOne)
			r.Get("/process", app.ProcessBatch)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", app.JobsCreate)
			r.Get("/", app.JobsList)
			r.Get("/{id}", app.JobsGet)
		})
	})

	return r
}
