package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gymstack-host/gymstack/internal/registry"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type createTenantRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// handleCreateTenant registers a tenant and provisions its schema. The
// registry row and the schema are created in that order; if
// provisioning fails, the registry row is deleted again so a retry
// starts from scratch.
func (s *Server) handleCreateTenant(c echo.Context) error {
	var req createTenantRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error":   "InvalidRequest",
			"message": "Invalid JSON body",
		})
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error":   "InvalidRequest",
			"message": "name and email are required",
		})
	}

	ctx := c.Request().Context()

	t, err := s.tenants.Add(ctx, req.Name, req.Email)
	if err != nil {
		if isDuplicateKey(err) {
			return c.JSON(http.StatusConflict, map[string]string{
				"error":   "TenantExists",
				"message": "A tenant with this email already exists",
			})
		}
		s.log.Error("tenant registration failed", zap.String("name", req.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "InternalError",
			"message": "Failed to register tenant",
		})
	}

	if err := s.schemas.CreateSchema(ctx, t.ID); err != nil {
		s.log.Error("tenant provisioning failed",
			zap.Int64("tenantId", t.ID), zap.Error(err))
		if rerr := s.tenants.Remove(ctx, t.ID); rerr != nil {
			s.log.Error("tenant registry rollback failed",
				zap.Int64("tenantId", t.ID), zap.Error(rerr))
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "ProvisioningFailed",
			"message": "Failed to provision tenant schema",
		})
	}

	s.log.Info("tenant created", zap.Int64("tenantId", t.ID), zap.String("name", t.Name))
	return c.JSON(http.StatusCreated, t)
}

// handleListTenants returns all registered tenants.
func (s *Server) handleListTenants(c echo.Context) error {
	tenants, err := s.tenants.List(c.Request().Context())
	if err != nil {
		s.log.Error("tenant list failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "InternalError",
			"message": "Failed to list tenants",
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"tenants": tenants,
	})
}

// handleGetTenant returns one tenant plus whether its schema exists.
// A registered tenant without a schema indicates provisioning drift and
// deserves operator attention.
func (s *Server) handleGetTenant(c echo.Context) error {
	id, ok := tenantIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error":   "InvalidRequest",
			"message": "id must be a positive integer",
		})
	}

	ctx := c.Request().Context()

	t, err := s.tenants.Get(ctx, id)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error":   "TenantNotFound",
				"message": "Tenant not found",
			})
		}
		s.log.Error("tenant get failed", zap.Int64("tenantId", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "InternalError",
			"message": "Failed to load tenant",
		})
	}

	exists, err := s.schemas.SchemaExists(ctx, id)
	if err != nil {
		s.log.Error("schema probe failed", zap.Int64("tenantId", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "InternalError",
			"message": "Failed to probe tenant schema",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"tenant":       t,
		"schemaExists": exists,
	})
}

// handleRemoveTenant drops a tenant's schema and deletes its registry
// row. Irreversible; the admin key is the only guard.
func (s *Server) handleRemoveTenant(c echo.Context) error {
	id, ok := tenantIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error":   "InvalidRequest",
			"message": "id must be a positive integer",
		})
	}

	ctx := c.Request().Context()

	if err := s.tenants.Remove(ctx, id); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error":   "TenantNotFound",
				"message": "Tenant not found",
			})
		}
		s.log.Error("tenant remove failed", zap.Int64("tenantId", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "InternalError",
			"message": "Failed to remove tenant",
		})
	}

	if err := s.schemas.DropSchema(ctx, id); err != nil {
		// Registry row is already gone; the orphaned schema needs
		// manual cleanup. Surface loudly.
		s.log.Error("tenant schema drop failed after registry removal",
			zap.Int64("tenantId", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "PartialRemoval",
			"message": "Tenant removed from registry but schema drop failed",
		})
	}

	s.log.Info("tenant removed", zap.Int64("tenantId", id))
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Tenant removed",
	})
}

// handleIssueAPIKey generates a fresh API key for a tenant. The
// plaintext key appears only in this response.
func (s *Server) handleIssueAPIKey(c echo.Context) error {
	id, ok := tenantIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error":   "InvalidRequest",
			"message": "id must be a positive integer",
		})
	}

	key, err := s.tenants.IssueAPIKey(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error":   "TenantNotFound",
				"message": "Tenant not found",
			})
		}
		s.log.Error("api key issue failed", zap.Int64("tenantId", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "InternalError",
			"message": "Failed to issue API key",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"apiKey": key,
	})
}

// handleMigrationSweep runs the migration sweep on demand and returns
// the per-schema report. Failures for individual schemas are reported,
// not treated as a request failure.
func (s *Server) handleMigrationSweep(c echo.Context) error {
	report, err := s.schemas.MigrateAll(c.Request().Context())
	if err != nil {
		s.log.Error("migration sweep failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "InternalError",
			"message": "Migration sweep could not discover tenant schemas",
		})
	}

	failures := make([]map[string]string, 0)
	for _, f := range report.Failed() {
		failures = append(failures, map[string]string{
			"schema": f.Schema,
			"error":  f.Err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"summary":    report.Summary(),
		"discovered": report.Discovered,
		"migrated":   report.Migrated,
		"failures":   failures,
	})
}

// --- Helpers ---

// tenantIDParam parses the :id route parameter.
func tenantIDParam(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// isDuplicateKey checks whether an error is a PostgreSQL unique
// constraint violation (error code 23505).
func isDuplicateKey(err error) bool {
	return strings.Contains(err.Error(), "23505") ||
		strings.Contains(err.Error(), "duplicate key") ||
		strings.Contains(err.Error(), "unique constraint")
}
