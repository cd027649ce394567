// Package server exposes the overlay pipeline and render sessions over HTTP.
//
// Routes:
//
//	POST   /render                  one-shot render (multipart: image, layout)
//	POST   /sessions                create a session from an image body
//	PUT    /sessions/{id}/image     replace the session image
//	PUT    /sessions/{id}/layout    set the layout document
//	PUT    /sessions/{id}/options   set render options
//	GET    /sessions/{id}/render    render with the session options
//	GET    /sessions/{id}/legend    legend of the current render
//	DELETE /sessions/{id}           reset and remove a session
//	GET    /healthz                 liveness and build info
//
// Errors are JSON objects {"code", "message"} with a status derived from
// the error code.
package server

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/boxlens/pkg/pipeline"
	"github.com/matzehuels/boxlens/pkg/session"
)

// DefaultMaxUpload bounds request bodies.
const DefaultMaxUpload = 32 << 20

// Config configures a Server.
type Config struct {
	// MaxUpload is the largest accepted request body in bytes.
	MaxUpload int64

	// Defaults are the render options used when a request leaves one unset.
	Defaults pipeline.Options

	// RequestTimeout bounds each request. Zero means no limit.
	RequestTimeout time.Duration
}

// Server handles HTTP requests. Create with New.
type Server struct {
	runner   *pipeline.Runner
	sessions session.Store
	logger   *log.Logger
	cfg      Config
}

// New creates a server backed by runner for one-shot renders and store
// for sessions.
func New(cfg Config, runner *pipeline.Runner, store session.Store, logger *log.Logger) *Server {
	if cfg.MaxUpload <= 0 {
		cfg.MaxUpload = DefaultMaxUpload
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner:   runner,
		sessions: store,
		logger:   logger,
		cfg:      cfg,
	}
}

// Routes returns the chi router serving the API.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}

	r.Get("/healthz", s.handleHealth)
	r.Post("/render", s.handleRender)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Put("/image", s.handleSessionImage)
			r.Put("/layout", s.handleSessionLayout)
			r.Put("/options", s.handleSessionOptions)
			r.Get("/render", s.handleSessionRender)
			r.Get("/legend", s.handleSessionLegend)
			r.Delete("/", s.handleDeleteSession)
		})
	})

	return r
}
