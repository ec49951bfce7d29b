// Package server exposes lead search and download over HTTP.
package server

import (
	"context"
	"embed"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"github.com/sells-group/lead-export/internal/leads"
	"github.com/sells-group/lead-export/internal/metrics"
	"github.com/sells-group/lead-export/internal/model"
	"github.com/sells-group/lead-export/internal/store"
)

//go:embed static/index.html
var staticFS embed.FS

// LeadFetcher runs one lead search.
type LeadFetcher interface {
	FetchLeadsWithStats(ctx context.Context, q leads.Query) ([]model.Lead, leads.Stats, error)
}

// Options configures optional server behavior.
type Options struct {
	// Store records search history. Nil disables history.
	Store store.Store
	// RateLimitRPS limits /api requests per second across all clients.
	// Zero disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	fetcher  LeadFetcher
	store    store.Store
	limiter  *rate.Limiter
	origins  []string
	validate *validator.Validate
	now      func() time.Time
}

// New creates a Server.
func New(f LeadFetcher, opts Options) *Server {
	s := &Server{
		fetcher:  f,
		store:    opts.Store,
		origins:  opts.CORSOrigins,
		validate: validator.New(),
		now:      time.Now,
	}
	if opts.RateLimitRPS > 0 {
		burst := opts.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), burst)
	}
	if len(s.origins) == 0 {
		s.origins = []string{"*"}
	}
	return s
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Post("/search", s.handleSearch)
		r.Get("/download", s.handleDownload)
		r.Get("/history", s.handleHistory)
	})

	return r
}
