// Package http provides the operational HTTP surface for ctrld: health
// check, read-only registry views, and Prometheus metrics. All mutation
// goes through the chat transport.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ctrld/internal/registry"
)

// Server provides HTTP endpoints for ctrld.
type Server struct {
	echo     *echo.Echo
	registry *registry.Registry
	logger   *zap.Logger
	config   *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// NewServer creates a new HTTP server. gatherer may be nil, in which case
// /metrics serves the default Prometheus gatherer.
func NewServer(reg *registry.Registry, gatherer prometheus.Gatherer, logger *zap.Logger, cfg *Config) (*Server, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 9090,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:     e,
		registry: reg,
		logger:   logger,
		config:   cfg,
	}

	// Register routes
	s.registerRoutes(gatherer)

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes(gatherer prometheus.Gatherer) {
	// Health check
	s.echo.GET("/health", s.handleHealth)

	// Prometheus metrics
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// API v1 routes (read-only)
	v1 := s.echo.Group("/api/v1")
	v1.GET("/projects", s.handleListProjects)
	v1.GET("/projects/:name", s.handleGetProject)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ProjectResponse is one project in API responses.
type ProjectResponse struct {
	Name       string   `json:"name"`
	Channel    string   `json:"channel"`
	Repository string   `json:"repository,omitempty"`
	Tracker    string   `json:"tracker,omitempty"`
	Owners     []string `json:"owners"`
}

// ListProjectsResponse is the response body for GET /api/v1/projects.
type ListProjectsResponse struct {
	Managers []string          `json:"managers"`
	Projects []ProjectResponse `json:"projects"`
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleListProjects returns every project plus the global manager list.
func (s *Server) handleListProjects(c echo.Context) error {
	m, err := s.registry.Snapshot(c.Request().Context())
	if err != nil {
		s.logger.Error("failed to load manifest", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load registry")
	}

	resp := ListProjectsResponse{
		Managers: m.Managers,
		Projects: make([]ProjectResponse, 0, len(m.Projects)),
	}
	for _, name := range m.ProjectNames() {
		p := m.Projects[name]
		resp.Projects = append(resp.Projects, ProjectResponse{
			Name:       name,
			Channel:    p.Channel,
			Repository: p.Repository,
			Tracker:    p.Tracker,
			Owners:     p.Owners,
		})
	}

	return c.JSON(http.StatusOK, resp)
}

// handleGetProject returns one project by name.
func (s *Server) handleGetProject(c echo.Context) error {
	name := c.Param("name")

	p, err := s.registry.Project(c.Request().Context(), name)
	if err != nil {
		if errors.Is(err, registry.ErrProjectNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "project not found")
		}
		s.logger.Error("failed to load manifest", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load registry")
	}

	return c.JSON(http.StatusOK, ProjectResponse{
		Name:       name,
		Channel:    p.Channel,
		Repository: p.Repository,
		Tracker:    p.Tracker,
		Owners:     p.Owners,
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
