package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KilimcininKorOglu/obaschema/internal/logging"
)

// ServerConfig holds REST server configuration.
type ServerConfig struct {
	Address      string
	Mode         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns default configuration.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:      ":8080",
		Mode:         gin.ReleaseMode,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// Server is the read-only schema browser.
type Server struct {
	config   *ServerConfig
	logger   logging.Logger
	handlers *Handlers
	engine   *gin.Engine
	server   *http.Server
	addr     net.Addr
}

// NewServer creates a server for handlers.
func NewServer(cfg *ServerConfig, handlers *Handlers, logger logging.Logger) *Server {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	s := &Server{
		config:   cfg,
		logger:   logger,
		handlers: handlers,
		engine:   gin.New(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.engine.Use(RecoveryMiddleware(s.logger))
	s.engine.Use(LoggingMiddleware(s.logger))
}

func (s *Server) setupRoutes() {
	h := s.handlers
	s.engine.GET("/health", h.HandleHealth)

	api := s.engine.Group("/api/v1")
	{
		api.GET("/config", h.HandleGetConfig)

		schemaAPI := api.Group("/schema")
		{
			schemaAPI.GET("/objectclasses", h.ListObjectClasses)
			schemaAPI.GET("/objectclasses/:name", h.GetObjectClass)
			schemaAPI.GET("/attributetypes", h.ListAttributeTypes)
			schemaAPI.GET("/attributetypes/:name", h.GetAttributeType)
			schemaAPI.GET("/matchingrules", h.ListMatchingRules)
			schemaAPI.GET("/syntaxes", h.ListSyntaxes)
			schemaAPI.GET("/report", h.GetReport)
			schemaAPI.POST("/validate-entry", h.ValidateEntry)
			schemaAPI.POST("/reload", h.Reload)
		}
	}

	s.engine.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "not found")
	})
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	s.addr = listener.Addr()

	s.server = &http.Server{
		Handler:      s.engine,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	s.logger.Info("REST server started", "address", s.addr.String())

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("REST server failed", "err", err)
		}
	}()
	return nil
}

// Addr returns the listening address once Start has succeeded.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("REST server stopped")
	return nil
}
