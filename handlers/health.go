package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/inventory_backend/config"
)

// HealthHandler answers 204 once the store is connected and reachable, 503 otherwise.
func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		db := config.GetDB()
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database is not connected", "reconnect": true})
			return
		}
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "reconnect": true})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
