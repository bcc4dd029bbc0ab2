package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mmdatafocus/inventory_backend/utils"
)

const CorrelationHeader = "X-Correlation-Id"

// CorrelationMiddleware tags every request with a correlation id, reusing the caller's when given.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationId := c.Request.Header.Get(CorrelationHeader)
		if correlationId == "" {
			correlationId = uuid.NewString()
		}
		c.Writer.Header().Set(CorrelationHeader, correlationId)
		ctx := utils.SetCorrelationIdInContext(c.Request.Context(), correlationId)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
