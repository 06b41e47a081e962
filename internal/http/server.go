package http

import (
	"context"
	stdhttp "net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"solid-service/internal/auth"
	"solid-service/internal/config"
	"solid-service/internal/http/middleware"
)

// Server wraps the Echo server with dependencies
type Server struct {
	echo     *echo.Echo
	config   *config.Config
	resource *ResourceHandler
}

// NewServer creates a new Echo server with middleware and routes
func NewServer(cfg *config.Config, resource *ResourceHandler, extractor auth.CredentialsExtractor) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = CustomHTTPErrorHandler

	e.Use(TagRequestID())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
		AllowMethods: []string{
			stdhttp.MethodGet, stdhttp.MethodHead, stdhttp.MethodPut,
			stdhttp.MethodPost, stdhttp.MethodPatch, stdhttp.MethodDelete,
		},
	}))
	rl := middleware.NewRateLimiter(extractor, cfg.Server.RequestsPerSecond, cfg.Server.RequestBurst)
	e.Use(rl.Middleware())

	server := &Server{
		echo:     e,
		config:   cfg,
		resource: resource,
	}
	server.registerRoutes()

	return server
}

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes() {
	s.echo.GET("/ping", s.pingHandler)
	s.echo.Any("/*", s.resource.Handle)
}

func (s *Server) pingHandler(c echo.Context) error {
	return c.JSON(stdhttp.StatusOK, map[string]string{"status": "ok"})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.echo.Start(":" + s.config.Server.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
