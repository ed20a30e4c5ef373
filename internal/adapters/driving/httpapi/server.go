package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/todo-agent/internal/core/ports/driving"
	"github.com/custodia-labs/todo-agent/internal/logger"
)

// Default configuration values.
const (
	DefaultAddr       = ":8000"
	DefaultAgentRPS   = 2.0
	DefaultAgentBurst = 4
)

// ErrMissingTaskService is returned when the task service is not provided.
var ErrMissingTaskService = errors.New("httpapi: task service is required")

// Ports aggregates the driving ports served over HTTP.
type Ports struct {
	// Tasks manages the todo list (required).
	Tasks driving.TaskService

	// Agent runs natural-language commands. Optional; /agent answers 503 without it.
	Agent driving.AgentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Tasks == nil {
		return ErrMissingTaskService
	}
	return nil
}

// Config holds HTTP server settings.
type Config struct {
	// AgentRPS limits POST /agent requests per second. Zero uses the default,
	// a negative value disables limiting.
	AgentRPS float64

	// AgentBurst is the limiter burst size (default 4).
	AgentBurst int
}

// Server serves the HTTP API.
type Server struct {
	ports   *Ports
	router  *mux.Router
	limiter *rate.Limiter
	now     func() time.Time
}

// NewServer creates a server and registers its routes.
func NewServer(ports *Ports, cfg Config) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	if cfg.AgentRPS == 0 {
		cfg.AgentRPS = DefaultAgentRPS
	}
	if cfg.AgentBurst <= 0 {
		cfg.AgentBurst = DefaultAgentBurst
	}

	s := &Server{
		ports:  ports,
		router: mux.NewRouter(),
		now:    time.Now,
	}
	if cfg.AgentRPS > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.AgentRPS), cfg.AgentBurst)
	}

	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/agent", s.handleAgent).Methods(http.MethodPost)

	s.router.HandleFunc("/tasks", s.handleListTasks).Methods(http.MethodGet)
	s.router.HandleFunc("/tasks", s.handleCreateTask).Methods(http.MethodPost)
	s.router.HandleFunc("/tasks/upsert", s.handleUpsertTask).Methods(http.MethodPost)
	s.router.HandleFunc("/tasks/{id:[0-9]+}", s.handleGetTask).Methods(http.MethodGet)
	s.router.HandleFunc("/tasks/{id:[0-9]+}", s.handleUpdateTask).Methods(http.MethodPatch)
	s.router.HandleFunc("/tasks/{id:[0-9]+}", s.handleDeleteTask).Methods(http.MethodDelete)
}

// Handler returns the router wrapped in the request id, access log and CORS middleware.
func (s *Server) Handler() http.Handler {
	return requestID(accessLog(cors(s.router)))
}

// Run serves on addr until the context is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("HTTP API listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
