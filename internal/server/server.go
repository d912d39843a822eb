// Package server provides the management HTTP API for gymstack, built
// on Echo v4. It hosts tenant provisioning/deprovisioning, the
// on-demand migration sweep, and the health and metrics endpoints.
package server

import (
	"context"
	"net/http"

	"github.com/gymstack-host/gymstack/internal/config"
	"github.com/gymstack-host/gymstack/internal/database"
	"github.com/gymstack-host/gymstack/internal/integrity"
	"github.com/gymstack-host/gymstack/internal/logging"
	"github.com/gymstack-host/gymstack/internal/metrics"
	"github.com/gymstack-host/gymstack/internal/registry"
	"github.com/gymstack-host/gymstack/internal/tenant"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Server wraps the Echo instance and application dependencies.
type Server struct {
	echo      *echo.Echo
	cfg       *config.Config
	db        *database.DB
	tenants   *registry.Store
	schemas   *tenant.Manager
	router    *tenant.Router
	validator *integrity.Validator
	log       *zap.Logger
}

// New creates a configured Echo server with all routes registered.
func New(cfg *config.Config, db *database.DB, tenants *registry.Store, schemas *tenant.Manager, router *tenant.Router, validator *integrity.Validator, log *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true // We log the listen address ourselves.

	e.Use(middleware.Recover())
	e.Use(logging.RequestLogger(log))
	e.Use(metrics.HTTPMiddleware())

	s := &Server{
		echo:      e,
		cfg:       cfg,
		db:        db,
		tenants:   tenants,
		schemas:   schemas,
		router:    router,
		validator: validator,
		log:       log,
	}

	s.registerRoutes()
	return s
}

// Start begins listening for HTTP requests. It blocks until the context
// is cancelled, then performs a graceful shutdown allowing in-flight
// requests to complete.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.cfg.ListenAddr))
		if err := s.echo.Start(s.cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("shutting down HTTP server")
		return s.echo.Shutdown(context.Background())
	}
}

// adminAuth is middleware that validates the Authorization header
// against the configured admin key. All management API endpoints are
// protected by this middleware.
func (s *Server) adminAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get("Authorization")
		if auth == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error":   "AuthRequired",
				"message": "Authorization header is required",
			})
		}

		const prefix = "Bearer "
		if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error":   "InvalidAuth",
				"message": "Authorization header must use Bearer scheme",
			})
		}

		if auth[len(prefix):] != s.cfg.AdminKey {
			return c.JSON(http.StatusForbidden, map[string]string{
				"error":   "Forbidden",
				"message": "Invalid admin key",
			})
		}

		return next(c)
	}
}
