//go:build !integration

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cartCompanion/business/recommend"
	"cartCompanion/pkg/metrics"
	"cartCompanion/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestServer() *echo.Echo {
	metrics.Init()
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.Use(Trace(), Metrics())

	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, recommend.TraceIDFromContext(c.Request().Context()))
	})
	admin := e.Group("/admin", AuthMiddleware(testSecret), AdminOnly())
	admin.GET("/whoami", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get("user_id").(string))
	})
	return e
}

func serve(e *echo.Echo, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTrace(t *testing.T) {
	e := newTestServer()

	rec := serve(e, http.MethodGet, "/ping", map[string]string{echo.HeaderXRequestID: "req-42"})
	assert.Equal(t, "req-42", rec.Body.String())
	assert.Equal(t, "req-42", rec.Header().Get(echo.HeaderXRequestID))

	rec = serve(e, http.MethodGet, "/ping", nil)
	assert.NotEmpty(t, rec.Body.String())
	assert.Equal(t, rec.Body.String(), rec.Header().Get(echo.HeaderXRequestID))
}

func TestErrorHandler_NotFound(t *testing.T) {
	e := newTestServer()

	rec := serve(e, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not_found"}`, rec.Body.String())

	rec = serve(e, http.MethodPost, "/ping", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not_found"}`, rec.Body.String())
}

func TestAuthMiddleware(t *testing.T) {
	e := newTestServer()

	admin, err := utils.GenerateJWT(testSecret, "ops-1", utils.RoleAdmin, time.Hour)
	require.NoError(t, err)
	viewer, err := utils.GenerateJWT(testSecret, "viewer-1", "viewer", time.Hour)
	require.NoError(t, err)
	forged, err := utils.GenerateJWT("other", "ops-1", utils.RoleAdmin, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"bad scheme", "Basic abc", http.StatusUnauthorized},
		{"forged", "Bearer " + forged, http.StatusUnauthorized},
		{"not admin", "Bearer " + viewer, http.StatusForbidden},
		{"admin", "Bearer " + admin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers[echo.HeaderAuthorization] = tt.header
			}
			rec := serve(e, http.MethodGet, "/admin/whoami", headers)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "ops-1", rec.Body.String())
			}
		})
	}
}

func TestAuthMiddleware_NoSecret(t *testing.T) {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, AuthMiddleware(""))
	rec := serve(e, http.MethodGet, "/x", map[string]string{echo.HeaderAuthorization: "Bearer abc"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
