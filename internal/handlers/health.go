package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"forum-chat/internal/db"
)

// Health answers readiness probes: 200 once the store pool is up and
// migrated, 503 otherwise.
func Health(database *db.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !database.Ready() || !database.Healthy(c.Request.Context(), 2*time.Second) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
