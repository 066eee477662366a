package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func adminRouter(am *AdminMiddleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/admin/refresh", am.RequireAdminAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestRequireAdminAuth_BearerKey(t *testing.T) {
	router := adminRouter(NewAdminMiddleware("swell-key"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/refresh", nil)
	req.Header.Set("Authorization", "Bearer swell-key")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdminAuth_APIKeyHeader(t *testing.T) {
	router := adminRouter(NewAdminMiddleware("swell-key"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/refresh", nil)
	req.Header.Set("X-API-Key", "swell-key")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdminAuth_WrongKey(t *testing.T) {
	router := adminRouter(NewAdminMiddleware("swell-key"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/refresh", nil)
	req.Header.Set("X-API-Key", "wrong-key")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdminAuth_NoKey(t *testing.T) {
	router := adminRouter(NewAdminMiddleware("swell-key"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/refresh", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdminAuth_UnconfiguredKeyDisablesEndpoints(t *testing.T) {
	t.Setenv("ADMIN_API_KEY", "")
	router := adminRouter(NewAdminMiddleware(""))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/refresh", nil)
	req.Header.Set("X-API-Key", "anything")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestValidateAdminKey(t *testing.T) {
	am := NewAdminMiddleware("swell-key")

	assert.True(t, am.ValidateAdminKey("swell-key"))
	assert.False(t, am.ValidateAdminKey("other"))
	assert.False(t, am.ValidateAdminKey(""))
}

func TestNewAdminMiddleware_EnvFallback(t *testing.T) {
	t.Setenv("ADMIN_API_KEY", "env-key")

	am := NewAdminMiddleware("")
	assert.True(t, am.ValidateAdminKey("env-key"))
}
