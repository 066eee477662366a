package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// AdminMiddleware guards operational endpoints such as cache stats and
// manual feed refreshes behind a static API key.
type AdminMiddleware struct {
	apiKey string
}

// NewAdminMiddleware creates an admin guard. The key falls back to the
// ADMIN_API_KEY environment variable when empty.
func NewAdminMiddleware(apiKey string) *AdminMiddleware {
	if apiKey == "" {
		apiKey = os.Getenv("ADMIN_API_KEY")
	}
	return &AdminMiddleware{apiKey: apiKey}
}

// RequireAdminAuth rejects requests without the admin API key. The key is
// accepted as a Bearer token or in the X-API-Key header.
func (am *AdminMiddleware) RequireAdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if am.apiKey == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Admin endpoints disabled, no API key configured"})
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") && am.ValidateAdminKey(parts[1]) {
				c.Next()
				return
			}
		}

		if am.ValidateAdminKey(c.GetHeader("X-API-Key")) {
			c.Next()
			return
		}

		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Unauthorized",
			"message": "Valid admin API key required for this endpoint",
		})
		c.Abort()
	}
}

// ValidateAdminKey compares a candidate key in constant time.
func (am *AdminMiddleware) ValidateAdminKey(key string) bool {
	if key == "" || am.apiKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(am.apiKey)) == 1
}
