package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Version is reported by the health endpoints.
var Version = "1.0.0"

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Root answers GET / with a liveness payload.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Diagnostic laboratory API is running",
		"status":    "OK",
		"timestamp": h.now().Format(time.RFC3339),
		"version":   Version,
	})
}

// Health reports the database state. A missing or unreachable database
// degrades the status but never fails the check.
func (h *Handler) Health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		database := "disconnected"
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err == nil {
				database = "connected"
			}
		}
		status := "OK"
		if database != "connected" {
			status = "DEGRADED"
		}
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"status":    status,
			"database":  database,
			"timestamp": h.now().Format(time.RFC3339),
			"version":   Version,
		})
	}
}
