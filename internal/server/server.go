// Package server exposes the growth pipeline and pruning sessions over
// HTTP.
//
// Routes live under /api and speak JSON; errors are {"code", "message"}
// objects with the status derived from the error code. Session changes are
// pushed to websocket subscribers on /api/sessions/{id}/watch.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/arbor/pkg/pipeline"
	"github.com/matzehuels/arbor/pkg/session"
	"github.com/matzehuels/arbor/pkg/species"
)

// Options configures a Server.
type Options struct {
	// LocalCORS allows any origin, for a front end served from a dev server.
	LocalCORS bool

	// RequestTimeout bounds non-websocket requests. Zero means 30s.
	RequestTimeout time.Duration
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	runner   *pipeline.Runner
	catalog  species.Catalog
	sessions *session.Manager
	logger   *log.Logger
	opts     Options
	upgrader websocket.Upgrader
}

// New creates a server. The catalogue is taken from the runner.
func New(runner *pipeline.Runner, sessions *session.Manager, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	s := &Server{
		runner:   runner,
		catalog:  runner.Catalog,
		sessions: sessions,
		logger:   logger,
		opts:     opts,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return opts.LocalCORS || r.Header.Get("Origin") == "" || sameOrigin(r)
		},
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	if s.opts.LocalCORS {
		r.Use(cors)
	}

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		timeout := middleware.Timeout(s.opts.RequestTimeout)

		r.With(timeout).Get("/species", s.handleListSpecies)
		r.With(timeout).Get("/species/{id}", s.handleGetSpecies)
		r.With(timeout).Post("/grow", s.handleGrow)

		r.Route("/sessions", func(r chi.Router) {
			r.With(timeout).Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				// No timeout: the connection lives as long as the subscriber.
				r.Get("/watch", s.handleWatch)

				r.Group(func(r chi.Router) {
					r.Use(timeout)
					r.Get("/", s.handleGetSession)
					r.Patch("/", s.handleUpdateSession)
					r.Delete("/", s.handleDeleteSession)
					r.Post("/prune", s.handlePrune)
					r.Delete("/prune", s.handleClearPruned)
					r.Post("/reset", s.handleReset)
					r.Get("/tree", s.handleTree)
					r.Get("/report", s.handleReport)
				})
			})
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}
