package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/hyunw00/attendbot/config"
)

func adminEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", AdminAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func getWithAuth(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminAuth(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "sekrit")
	config.Reset()
	t.Cleanup(config.Reset)

	r := adminEngine()

	if w := getWithAuth(r, "Bearer sekrit"); w.Code != http.StatusOK {
		t.Errorf("valid token: status %d, want 200", w.Code)
	}
	if w := getWithAuth(r, "Bearer wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: status %d, want 401", w.Code)
	}
	if w := getWithAuth(r, "sekrit"); w.Code != http.StatusUnauthorized {
		t.Errorf("missing Bearer prefix: status %d, want 401", w.Code)
	}
	if w := getWithAuth(r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no header: status %d, want 401", w.Code)
	}
}

func TestAdminAuthDisabledWithoutToken(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "")
	config.Reset()
	t.Cleanup(config.Reset)

	if w := getWithAuth(adminEngine(), "Bearer anything"); w.Code != http.StatusForbidden {
		t.Errorf("no configured token: status %d, want 403", w.Code)
	}
}
