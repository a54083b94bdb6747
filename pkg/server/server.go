package server

import (
	"fmt"
	"net/http"

	"github.com/marketpulse/core/internal/config"
	"github.com/marketpulse/core/pkg/handlers/health"
	jobshandler "github.com/marketpulse/core/pkg/handlers/jobs"
	settingshandler "github.com/marketpulse/core/pkg/handlers/settings"
	taskshandler "github.com/marketpulse/core/pkg/handlers/tasks"
	updatehandler "github.com/marketpulse/core/pkg/handlers/update"
	"github.com/marketpulse/core/pkg/jobs"
	"github.com/marketpulse/core/pkg/logger"
	"github.com/marketpulse/core/pkg/middleware"
	"github.com/marketpulse/core/pkg/progress"
	"github.com/marketpulse/core/pkg/schedule"
	"github.com/marketpulse/core/pkg/services"
	"github.com/marketpulse/core/pkg/settings"
	"github.com/marketpulse/core/pkg/tasks"
)

// Server represents the API server
type Server struct {
	router       *http.ServeMux
	port         string
	logger       *logger.Logger
	orchestrator *tasks.Orchestrator
	settings     *settings.Manager
	handlers     struct {
		health   *health.Handler
		tasks    *taskshandler.Handler
		update   *updatehandler.Handler
		settings *settingshandler.Handler
		jobs     *jobshandler.Handler
	}
}

// New creates a new server instance
func New(cfg *config.Config, log *logger.Logger) (*Server, error) {
	store := progress.NewStore(cfg.Data.ProgressFile, log)

	manager := settings.NewManager(cfg.Data.SettingsFile, log)
	manager.SetScheduleHook(func(entries []schedule.Entry) error {
		return schedule.WriteFile(cfg.Schedule.CrontabFile, entries, cfg.Schedule.Command, cfg.Schedule.LogFile)
	})

	client := services.NewFetchClient(cfg, log)
	syncer := jobs.NewSyncer(client, store, log)
	catalog, err := jobs.BuildCatalog(syncer)
	if err != nil {
		return nil, fmt.Errorf("failed to build job catalog: %w", err)
	}

	orchestrator := tasks.NewOrchestrator(catalog, store, cfg.Data.WorkDir, log)

	server := &Server{
		router:       http.NewServeMux(),
		port:         cfg.Server.Port,
		logger:       log,
		orchestrator: orchestrator,
		settings:     manager,
	}

	server.handlers.health = health.NewHandler(store, log)
	server.handlers.tasks = taskshandler.NewHandler(orchestrator, log)
	server.handlers.update = updatehandler.NewHandler(orchestrator, jobs.JobComplete, log)
	server.handlers.settings = settingshandler.NewHandler(manager, log)
	server.handlers.jobs = jobshandler.NewHandler(catalog, log)

	server.setupRoutes()

	return server, nil
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.HandleFunc("/health", s.wrap(s.handlers.health.HealthCheck))

	// Simple root endpoint
	s.router.HandleFunc("/", s.wrap(func(w http.ResponseWriter, r *http.Request) {
		if _, err := fmt.Fprintf(w, "MarketPulse API Service - OK"); err != nil {
			http.Error(w, "Failed to write response", http.StatusInternalServerError)
		}
	}))

	// Named-task endpoints
	s.router.HandleFunc("/api/tasks", s.wrap(s.handlers.tasks.Submit))
	s.router.HandleFunc("/api/tasks/status", s.wrap(s.handlers.tasks.Status))

	// Whole-dataset refresh endpoints
	s.router.HandleFunc("/api/update", s.wrap(s.handlers.update.Submit))
	s.router.HandleFunc("/api/update/status", s.wrap(s.handlers.update.Status))

	// Settings endpoints
	s.router.HandleFunc("/api/settings", s.wrap(s.handlers.settings.Handle))

	// Job catalog endpoints
	s.router.HandleFunc("/api/jobs", s.wrap(s.handlers.jobs.List))
	s.router.HandleFunc("/api/jobs/lookup", s.wrap(s.handlers.jobs.Lookup))
}

func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return middleware.CORS(middleware.RequestID(s.logger, next))
}

// Router exposes the configured mux, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Settings exposes the settings manager so the host process can start
// the file watcher.
func (s *Server) Settings() *settings.Manager {
	return s.settings
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info().
		Str("action", "server_start").
		Str("port", s.port).
		Msg("Starting API server")

	if err := http.ListenAndServe(":"+s.port, s.router); err != nil {
		return fmt.Errorf("server failed to start on port %s: %w", s.port, err)
	}

	return nil
}

// Close waits for in-flight background tasks to finish.
func (s *Server) Close() {
	s.orchestrator.Wait()
	s.logger.Info().Str("action", "server_closed").Msg("Server shut down")
}
