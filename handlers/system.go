// system.go - Liveness, health and the WebSocket endpoint

package handlers

import (
	"log"
	"net/http"

	"go-jobmarket-backend/database"
	"go-jobmarket-backend/middleware"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Root(c *gin.Context) {
	c.String(http.StatusOK, "Server is running 🚀")
}

// Health reports whether the database answers a ping.
func (h *Handler) Health(c *gin.Context) {
	if err := database.Ping(c.Request.Context(), h.store.DB()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// WebSocket upgrades the connection and subscribes it to the caller's events.
func (h *Handler) WebSocket(c *gin.Context) {
	claims := mustClaims(c)
	if err := h.hub.Serve(c.Writer, c.Request, claims.UserID); err != nil {
		// the upgrader has already written the HTTP error
		log.Printf("[ws] rid=%s user=%d upgrade failed: %v", middleware.RequestIDFrom(c), claims.UserID, err)
		c.Abort()
	}
}
