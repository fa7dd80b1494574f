package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestSecurityHeaders(t *testing.T) {
	e := echo.New()
	e.Use(SecurityHeaders("/api"))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/api/v1/status", ok)
	e.GET("/health", ok)

	tests := []struct {
		path      string
		wantCache bool
	}{
		{"/api/v1/status", true},
		{"/health", false},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"), tt.path)
		assert.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"), tt.path)
		if tt.wantCache {
			assert.Equal(t, "no-cache", rec.Header().Get("Pragma"), tt.path)
		} else {
			assert.Empty(t, rec.Header().Get("Cache-Control"), tt.path)
		}
	}
}
