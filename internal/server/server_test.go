package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gymstack-host/gymstack/internal/config"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthTestServer() *Server {
	s := &Server{
		cfg:  &config.Config{AdminKey: "test-admin-key"},
		echo: echo.New(),
		log:  zap.NewNop(),
	}
	s.echo.GET("/protected", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, s.adminAuth)
	return s
}

func TestAdminAuth(t *testing.T) {
	s := newAuthTestServer()

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bare bearer", "Bearer ", http.StatusUnauthorized},
		{"wrong key", "Bearer nope", http.StatusForbidden},
		{"correct key", "Bearer test-admin-key", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			s.echo.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestTenantIDParam(t *testing.T) {
	e := echo.New()

	param := func(raw string) (int64, bool) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(raw)
		return tenantIDParam(c)
	}

	id, ok := param("42")
	require.True(t, ok)
	assert.EqualValues(t, 42, id)

	for _, raw := range []string{"", "abc", "0", "-3", "1.5"} {
		_, ok := param(raw)
		assert.False(t, ok, "raw=%q", raw)
	}
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(errString(`ERROR: duplicate key value violates unique constraint "tenants_email_key" (SQLSTATE 23505)`)))
	assert.False(t, isDuplicateKey(errString("connection refused")))
}

type errString string

func (e errString) Error() string { return string(e) }
