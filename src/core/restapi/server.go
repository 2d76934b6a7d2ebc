/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package restapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atombpmn/flowrt/src/core/auth"
	"github.com/atombpmn/flowrt/src/core/logger"
	"github.com/atombpmn/flowrt/src/core/restapi/handlers"
	"github.com/atombpmn/flowrt/src/core/restapi/middleware"
	"github.com/atombpmn/flowrt/src/core/restapi/models"
	"github.com/atombpmn/flowrt/src/incidents"
	"github.com/atombpmn/flowrt/src/messages"
	"github.com/atombpmn/flowrt/src/process"
)

// Config holds REST API server configuration
type Config struct {
	Host      string                      `yaml:"host"`
	Port      int                         `yaml:"port"`
	CORS      *middleware.CORSConfig      `yaml:"cors"`
	Logging   *middleware.LoggingConfig   `yaml:"logging"`
	RateLimit *middleware.RateLimitConfig `yaml:"rate_limit"`
	Swagger   *SwaggerConfig              `yaml:"swagger"`
}

// Dependencies bundles the already-constructed domain components the REST
// surface is a thin wrapper around. The caller (cmd/flowrt's run command,
// or a test) owns their lifecycle; the server only reads from them.
type Dependencies struct {
	Process   *process.Component
	Messages  *messages.Component
	Incidents *incidents.Component
	Auth      *auth.Component
}

// SwaggerConfig holds Swagger documentation configuration
type SwaggerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Title   string `yaml:"title"`
	Version string `yaml:"version"`
}

// DefaultConfig returns default REST API configuration
func DefaultConfig() *Config {
	return &Config{
		Host:      "localhost",
		Port:      27555,
		CORS:      middleware.DefaultCORSConfig(),
		Logging:   middleware.DefaultLoggingConfig(),
		RateLimit: middleware.DefaultRateLimitConfig(),
		Swagger: &SwaggerConfig{
			Enabled: true,
			Path:    "/api/docs",
			Title:   "Atom Engine REST API",
			Version: "1.0.0",
		},
	}
}

// Server represents REST API server
type Server struct {
	config        *Config
	httpServer    *http.Server
	router        *gin.Engine
	deps          *Dependencies
	authComponent *auth.Component

	// Middleware instances
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
	loggingMiddleware   *middleware.LoggingMiddleware
	rateLimitMiddleware *middleware.RateLimitMiddleware

	// Handler instances
	processHandler  *handlers.ProcessHandler
	messagesHandler *handlers.MessagesHandler
}

// NewServer creates new REST API server instance, wired directly to the
// already-running process/messages/incidents components (the equivalent
// of the teacher's gRPC-fronted core, minus the gRPC).
func NewServer(config *Config, deps *Dependencies) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	server := &Server{
		config:        config,
		deps:          deps,
		authComponent: deps.Auth,
	}

	server.setupHandlers()
	server.setupRouter()
	return server
}

// setupHandlers initializes all request handlers
func (s *Server) setupHandlers() {
	s.processHandler = handlers.NewProcessHandler(s.deps.Process)
	s.messagesHandler = handlers.NewMessagesHandler(s.deps.Messages)
}

// setupRouter configures Gin router and middleware
func (s *Server) setupRouter() {
	// Gin always runs in release mode
	gin.SetMode(gin.ReleaseMode)

	// Create router
	s.router = gin.New()

	// Setup middleware
	s.setupMiddleware()

	// Setup routes
	s.setupRoutes()
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	// Recovery middleware (built-in)
	s.router.Use(gin.Recovery())

	// CORS middleware
	if s.config.CORS != nil {
		s.corsMiddleware = middleware.NewCORSMiddleware(s.config.CORS)
		s.router.Use(s.corsMiddleware.Handler())
	}

	// Logging middleware
	if s.config.Logging != nil {
		s.loggingMiddleware = middleware.NewLoggingMiddleware(s.config.Logging)
		s.router.Use(s.loggingMiddleware.Handler())
	}

	// Rate limiting middleware
	if s.config.RateLimit != nil {
		s.rateLimitMiddleware = middleware.NewRateLimitMiddleware(s.config.RateLimit)
		s.router.Use(s.rateLimitMiddleware.Handler())
	}

	// Auth middleware
	if s.authComponent != nil {
		s.authMiddleware = middleware.NewAuthMiddleware(s.authComponent)
		s.router.Use(s.authMiddleware.Authenticate())
	}
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthHandler)

	// API v1 routes: the thin surface kept in scope (start/get instance,
	// deliver message/signal).
	v1 := s.router.Group("/api/v1")
	{
		s.processHandler.RegisterRoutes(v1, s.authMiddleware)
		s.messagesHandler.RegisterRoutes(v1, s.authMiddleware)
	}

	// Swagger documentation
	if s.config.Swagger != nil && s.config.Swagger.Enabled {
		s.router.GET(s.config.Swagger.Path, s.swaggerHandler)
		s.router.Static(s.config.Swagger.Path+"/static", "./docs/swagger")
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Info("Starting REST API server",
		logger.String("address", addr),
		logger.Int("port", s.config.Port))

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("REST API server failed", logger.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop stops the REST API server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	logger.Info("Stopping REST API server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// IsReady returns server ready status
func (s *Server) IsReady() bool {
	return s.httpServer != nil
}

// Basic handlers (more will be in separate handler files)

// healthHandler handles health check requests
func (s *Server) healthHandler(c *gin.Context) {
	response := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Checks: map[string]interface{}{
			"server": "ok",
		},
	}

	c.JSON(http.StatusOK, models.SuccessResponse(response, "health"))
}

// swaggerHandler serves Swagger documentation
func (s *Server) swaggerHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "swagger.html", gin.H{
		"title":   s.config.Swagger.Title,
		"version": s.config.Swagger.Version,
	})
}
