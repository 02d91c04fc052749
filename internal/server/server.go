// Package server exposes the task service over HTTP: a JSON API for task
// lifecycle operations, CSV import, runtime configuration, and a
// server-sent-events feed tailing each task's live agent output.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/conductor/internal/agent"
	"github.com/mrz1836/conductor/internal/config"
	"github.com/mrz1836/conductor/internal/domain"
	"github.com/mrz1836/conductor/internal/ingest"
)

// TaskEngine drives task lifecycle operations.
type TaskEngine interface {
	Start(ctx context.Context, id, prompt string) (*domain.Task, error)
	Action(ctx context.Context, id string) (*domain.Task, error)
	Finalize(ctx context.Context, id string) (*domain.Task, error)
	Followup(ctx context.Context, id, prompt string) (*domain.Task, error)
	Push(ctx context.Context, id string) (*domain.Task, string, error)
	Delete(ctx context.Context, id string) error
}

// TaskReader serves task listings and lookups, plus the prompt update which
// bypasses the state machine.
type TaskReader interface {
	List(ctx context.Context) ([]domain.Task, error)
	Get(ctx context.Context, id string) (*domain.Task, error)
	Update(ctx context.Context, updated *domain.Task) error
}

// Importer ingests tracker CSV exports.
type Importer interface {
	Import(ctx context.Context, r io.Reader) (*ingest.Result, error)
}

// Streamer provides the live tail feed for a task's sink.
type Streamer interface {
	Subscribe(ctx context.Context, taskID string) <-chan agent.Event
}

// SettingsStore loads and saves the runtime-mutable settings record.
type SettingsStore interface {
	Load(ctx context.Context) (*config.Settings, error)
	Save(ctx context.Context, settings *config.Settings) error
}

// Server is the HTTP front end.
type Server struct {
	cfg      *config.Config
	tasks    TaskReader
	engine   TaskEngine
	importer Importer
	streamer Streamer
	settings SettingsStore
	logger   zerolog.Logger

	httpServer *http.Server
}

// Deps collects the server's collaborators.
type Deps struct {
	Config   *config.Config
	Tasks    TaskReader
	Engine   TaskEngine
	Importer Importer
	Streamer Streamer
	Settings SettingsStore
	Logger   zerolog.Logger
}

// New creates a Server and builds its router.
func New(deps Deps) *Server {
	s := &Server{
		cfg:      deps.Config,
		tasks:    deps.Tasks,
		engine:   deps.Engine,
		importer: deps.Importer,
		streamer: deps.Streamer,
		settings: deps.Settings,
		logger:   deps.Logger,
	}

	s.httpServer = &http.Server{
		Addr:              deps.Config.Server.ListenAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: s.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})
	r.Use(corsHandler.Handler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", s.handleListTasks)
			r.Post("/import", s.handleImport)

			r.Route("/{taskID}", func(r chi.Router) {
				r.Get("/", s.handleGetTask)
				r.Delete("/", s.handleDeleteTask)
				r.Post("/prompt", s.handleUpdatePrompt)
				r.Post("/start", s.handleStart)
				r.Post("/action", s.handleAction)
				r.Post("/finalize", s.handleFinalize)
				r.Post("/followup", s.handleFollowup)
				r.Post("/push", s.handlePush)
				r.Get("/stream", s.handleStream)
			})
		})

		r.Get("/config", s.handleGetConfig)
		r.Put("/config", s.handlePutConfig)
	})

	return r
}

// ListenAndServe runs the HTTP server until ctx is canceled, then shuts it
// down gracefully within the configured timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server listening")

		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()

		s.logger.Info().Msg("shutting down HTTP server")

		return s.httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
