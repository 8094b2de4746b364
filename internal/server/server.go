// Package server exposes the layout pipeline and the sequence store over
// HTTP.
//
// Routes:
//
//	POST   /v1/layout                   rows → layout JSON
//	POST   /v1/render                   rows → SVG
//	GET    /v1/maps/{db}                stored sequences of a feature database
//	GET    /v1/maps/{db}/{hash}         stored sequence with its features
//	PUT    /v1/maps/{db}/{hash}         store a sequence
//	DELETE /v1/maps/{db}/{hash}         remove a sequence
//	GET    /v1/maps/{db}/{hash}/layout  layout of a stored sequence
//	GET    /v1/maps/{db}/{hash}/svg     map of a stored sequence
//	GET    /metrics                     Prometheus metrics, when configured
//	GET    /healthz
//
// Request bodies for /v1/layout and /v1/render are either a pipeline
// options object ({"length": N, "features": [...], "layout": {...}}) or the
// Giraffe array form [N, {...}, ...]. Errors are JSON objects carrying the
// error code and the request ID.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/plasmap/pkg/config"
	"github.com/matzehuels/plasmap/pkg/layout"
	"github.com/matzehuels/plasmap/pkg/pipeline"
	"github.com/matzehuels/plasmap/pkg/store"
)

const shutdownTimeout = 10 * time.Second

// Options wires the server's dependencies.
type Options struct {
	Runner *pipeline.Runner
	Store  store.Store

	// Layout holds the layout defaults request bodies are decoded over.
	Layout layout.Options
	Config config.ServerConfig

	// Metrics serves /metrics. Nil leaves the route out.
	Metrics http.Handler
	Logger  *log.Logger
}

// Server is the HTTP API.
type Server struct {
	runner  *pipeline.Runner
	store   store.Store
	layout  layout.Options
	cfg     config.ServerConfig
	metrics http.Handler
	logger  *log.Logger
	router  chi.Router
}

// New builds the server and its routes. Zero config fields take the
// defaults of [config.Default].
func New(opts Options) *Server {
	defaults := config.Default()
	if opts.Config.Addr == "" {
		opts.Config.Addr = defaults.Server.Addr
	}
	if opts.Config.MaxBodyBytes <= 0 {
		opts.Config.MaxBodyBytes = defaults.Server.MaxBodyBytes
	}
	if opts.Config.ReadTimeout == 0 {
		opts.Config.ReadTimeout = defaults.Server.ReadTimeout
	}
	if opts.Config.WriteTimeout == 0 {
		opts.Config.WriteTimeout = defaults.Server.WriteTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}
	if opts.Layout.MaxPasses == 0 {
		opts.Layout = layout.DefaultOptions()
	}

	s := &Server{
		runner:  opts.Runner,
		store:   opts.Store,
		layout:  opts.Layout,
		cfg:     opts.Config,
		metrics: opts.Metrics,
		logger:  opts.Logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, r, http.StatusNotFound, "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, r, http.StatusMethodNotAllowed, "method "+r.Method+" not allowed")
	})

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.limitBody)
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)

		r.Route("/maps/{db}", func(r chi.Router) {
			r.Get("/", s.handleList)
			r.Route("/{hash}", func(r chi.Router) {
				r.Get("/", s.handleGetMap)
				r.Put("/", s.handlePutMap)
				r.Delete("/", s.handleDeleteMap)
				r.Get("/layout", s.handleStoredLayout)
				r.Get("/svg", s.handleStoredSVG)
			})
		})
	})

	return r
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// defaults returns fresh pipeline options carrying the server's layout
// defaults. The cutter list is copied so request decoding cannot write into
// the shared slice.
func (s *Server) defaults() pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.Layout = s.layout
	opts.Layout.CuttersToShow = slices.Clone(s.layout.CuttersToShow)
	opts.Layout.Logger = nil
	return opts
}
