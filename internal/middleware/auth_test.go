package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func serve(t *testing.T, expected, header string) int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TenantAuth(expected))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if header != "" {
		req.Header.Set(TenantHeader, header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestTenantAuth(t *testing.T) {
	if code := serve(t, "t-1", "t-1"); code != http.StatusOK {
		t.Fatalf("matching tenant should pass, got %d", code)
	}
	if code := serve(t, "t-1", ""); code != http.StatusUnauthorized {
		t.Fatalf("missing tenant should 401, got %d", code)
	}
	if code := serve(t, "t-1", "t-2"); code != http.StatusForbidden {
		t.Fatalf("wrong tenant should 403, got %d", code)
	}
	if code := serve(t, "", ""); code != http.StatusOK {
		t.Fatalf("disabled check should pass, got %d", code)
	}
}
