// Package server exposes an [app.App] over a JSON HTTP API for a browser
// front end.
//
// # Routes
//
//	GET    /healthz
//	GET    /api/catalog?q=&limit=          palette search
//	GET    /api/layouts?q=                 list or search layouts
//	POST   /api/layouts                    create {"title"}
//	GET    /api/layouts/{id}
//	PATCH  /api/layouts/{id}               {"title","author","tags"}
//	DELETE /api/layouts/{id}
//	POST   /api/layouts/{id}/select
//	GET    /api/layouts/{id}/grid          row-major cell matrix
//	POST   /api/commands                   editor command against the current layout
//	POST   /api/import                     Banktags text body
//	GET    /api/export                     Banktags text of the current layout
//	POST   /api/sessions                   new editor session
//	GET    /api/sessions/{sid}
//	DELETE /api/sessions/{sid}
//	POST   /api/sessions/{sid}/gestures    apply a gesture
//
// Errors are returned as {"error":{"code","message"}} with a status derived
// from the [errors.Code].
//
// # Concurrency
//
// The application state has a single writer. Every handler that touches it
// holds the server mutex for the whole request.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/banktags/pkg/app"
	"github.com/matzehuels/banktags/pkg/session"
)

const (
	shutdownTimeout = 5 * time.Second
	cleanupInterval = 5 * time.Minute
	maxBodyBytes    = 1 << 20
)

// Options configures a [Server]. Zero values select defaults.
type Options struct {
	Sessions   session.Store
	SessionTTL time.Duration
	Logger     *log.Logger
}

// Server serves the HTTP API.
type Server struct {
	mu  sync.Mutex
	app *app.App

	sessions   session.Store
	sessionTTL time.Duration
	logger     *log.Logger
	router     chi.Router
}

// New builds the router for a.
func New(a *app.App, opts Options) *Server {
	if opts.Sessions == nil {
		opts.Sessions = session.NewMemoryStore()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = session.DefaultTTL
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	s := &Server{
		app:        a,
		sessions:   opts.Sessions,
		sessionTTL: opts.SessionTTL,
		logger:     opts.Logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)

		r.Route("/layouts", func(r chi.Router) {
			r.Get("/", s.handleListLayouts)
			r.Post("/", s.handleCreateLayout)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetLayout)
				r.Patch("/", s.handleUpdateLayout)
				r.Delete("/", s.handleDeleteLayout)
				r.Post("/select", s.handleSelectLayout)
				r.Get("/grid", s.handleGrid)
			})
		})

		r.Post("/commands", s.handleCommand)
		r.Post("/import", s.handleImport)
		r.Get("/export", s.handleExport)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{sid}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Post("/gestures", s.handleGesture)
			})
		})
	})
	return r
}

// Run listens on addr until ctx ends, then shuts down gracefully. Expired
// sessions are swept in the background.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := s.sessions.Cleanup(ctx); err != nil {
					s.logger.Warn("session cleanup failed", "err", err)
				}
			}
		}
	})
	return g.Wait()
}

// logRequests logs one line per request at debug level, warn for 5xx.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		kv := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"dur", time.Since(start).Round(time.Microsecond),
			"req", middleware.GetReqID(r.Context()),
		}
		if ww.Status() >= http.StatusInternalServerError {
			s.logger.Warn("request", kv...)
			return
		}
		s.logger.Debug("request", kv...)
	})
}
