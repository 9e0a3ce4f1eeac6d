package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"forum-chat/internal/session"
)

// Auth resolves the caller's session and stores the identity on the gin
// context. Page-style routes redirect unauthenticated callers to the login
// page; API-style routes answer 401.
func Auth(sessions session.Provider, redirectToLogin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			deny(c, redirectToLogin)
			return
		}

		ident, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			deny(c, redirectToLogin)
			return
		}

		c.Set("userID", ident.UserID)
		c.Set("username", ident.Username)
		c.Next()
	}
}

// Ready gates request handling on the store readiness signal.
func Ready(ready func() bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ready() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "service is starting"})
			return
		}
		c.Next()
	}
}

// BearerToken extracts the session token from the Authorization header
// (scheme matched case-insensitively) or, when no header is present, from
// the token query parameter used by websocket clients.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}

func deny(c *gin.Context, redirectToLogin bool) {
	if redirectToLogin {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid session"})
}
