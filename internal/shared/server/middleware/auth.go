package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vault-backend/internal/shared/auth"
	"vault-backend/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	userEmailKey = "userEmail"
	userNameKey  = "userName"
	isGuestKey   = "isGuest"
)

// Auth validates session tokens or guest headers and stores identity in
// context. Auth issuance routes and the health check pass through.
func Auth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		path := c.Request.URL.Path
		if !strings.HasPrefix(path, "/api/") ||
			strings.HasPrefix(path, "/api/auth/") ||
			path == "/api/health" {
			c.Next()
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))

		if authHeader != "" {
			if !strings.HasPrefix(authHeader, "Bearer ") {
				respond.Error(c, http.StatusUnauthorized, "Missing or invalid token")
				return
			}

			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
			if token == "" {
				respond.Error(c, http.StatusUnauthorized, "Missing or invalid token")
				return
			}

			claims, err := auth.Verify(secret, token)
			if err != nil {
				respond.Error(c, http.StatusUnauthorized, "Missing or invalid token")
				return
			}

			c.Set(userIDKey, claims.Subject)
			if claims.Email != "" {
				c.Set(userEmailKey, claims.Email)
			}
			if claims.Name != "" {
				c.Set(userNameKey, claims.Name)
			}
			c.Set(isGuestKey, false)
			c.Next()
			return
		}

		guestID := strings.TrimSpace(c.GetHeader("X-Guest-Id"))
		if guestID == "" {
			respond.Error(c, http.StatusUnauthorized, "Missing identity")
			return
		}

		c.Set(userIDKey, auth.GuestID(guestID))
		c.Set(isGuestKey, true)
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) (string, bool) {
	if c == nil {
		return "", false
	}
	val, _ := c.Get(userIDKey)
	id, ok := val.(string)
	return id, ok && id != ""
}

// IsGuestFromContext reports whether the request identity is a guest session.
func IsGuestFromContext(c *gin.Context) bool {
	if c == nil {
		return false
	}
	val, _ := c.Get(isGuestKey)
	guest, _ := val.(bool)
	return guest
}
