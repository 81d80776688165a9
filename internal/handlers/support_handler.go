package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/servicios/internal/services"
)

func Contact(s *services.SupportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.ContactInput
		if err := c.ShouldBindJSON(&in); err != nil {
			respondError(c, err)
			return
		}
		msg, err := s.Contact(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Mensaje recibido, te contactaremos pronto",
			"id":      msg.ID,
		})
	}
}

// Health reports process uptime and whether the database answers a ping.
func Health(started time.Time, ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		database := "up"
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			database = "down"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"uptime":   time.Since(started).Round(time.Second).String(),
			"database": database,
		})
	}
}
