package server

import (
	"context"
	"net/http"

	"github.com/gymstack-host/gymstack/internal/tenant"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// tenantStats is a small operational summary of one tenant's data,
// gathered through the execution router. All the queries run
// unqualified on a tenant-bound connection.
type tenantStats struct {
	Members           int64 `json:"members"`
	ActiveMemberships int64 `json:"activeMemberships"`
	CheckInsToday     int64 `json:"checkInsToday"`
	OpenLeads         int64 `json:"openLeads"`
}

// handleTenantStats returns row counts from the tenant's schema.
func (s *Server) handleTenantStats(c echo.Context) error {
	id, ok := tenantIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error":   "InvalidRequest",
			"message": "id must be a positive integer",
		})
	}

	var stats tenantStats
	err := s.router.ExecuteInTenant(c.Request().Context(), id, func(ctx context.Context, conn *tenant.Conn) error {
		counts := []struct {
			dst   *int64
			query string
		}{
			{&stats.Members, `SELECT COUNT(*) FROM users WHERE status = 'active'`},
			{&stats.ActiveMemberships, `SELECT COUNT(*) FROM memberships WHERE status = 'active'`},
			{&stats.CheckInsToday, `SELECT COUNT(*) FROM attendance WHERE check_in >= CURRENT_DATE`},
			{&stats.OpenLeads, `SELECT COUNT(*) FROM leads WHERE stage NOT IN ('won', 'lost')`},
		}
		for _, q := range counts {
			if err := conn.QueryRow(ctx, q.query).Scan(q.dst); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("tenant stats failed", zap.Int64("tenantId", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "InternalError",
			"message": "Failed to load tenant stats",
		})
	}

	return c.JSON(http.StatusOK, stats)
}

// handleTenantIntegrity audits the tenant's cross-schema staff
// references and reports any that no longer resolve.
func (s *Server) handleTenantIntegrity(c echo.Context) error {
	id, ok := tenantIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error":   "InvalidRequest",
			"message": "id must be a positive integer",
		})
	}

	violations, err := s.validator.AuditTenant(c.Request().Context(), id)
	if err != nil {
		s.log.Error("integrity audit failed", zap.Int64("tenantId", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "InternalError",
			"message": "Failed to audit tenant integrity",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"violations": violations,
		"clean":      len(violations) == 0,
	})
}
