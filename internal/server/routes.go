package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes() {
	// --- Public endpoints (no auth) ---
	s.echo.GET("/healthz", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// --- Management API (admin auth required) ---
	admin := s.echo.Group("/v1", s.adminAuth)
	admin.POST("/tenants", s.handleCreateTenant)
	admin.GET("/tenants", s.handleListTenants)
	admin.GET("/tenants/:id", s.handleGetTenant)
	admin.DELETE("/tenants/:id", s.handleRemoveTenant)
	admin.POST("/tenants/:id/keys", s.handleIssueAPIKey)
	admin.GET("/tenants/:id/stats", s.handleTenantStats)
	admin.GET("/tenants/:id/integrity", s.handleTenantIntegrity)
	admin.POST("/migrations/sweep", s.handleMigrationSweep)
}

// handleHealth reports whether the database is reachable. Used by
// orchestration and monitoring to verify the service is alive.
func (s *Server) handleHealth(c echo.Context) error {
	if err := s.db.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  "database unreachable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": "0.1.0",
	})
}
