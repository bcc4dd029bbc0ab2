package main

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/inventory_backend/config"
)

// RateLimiter counts requests per client IP in redis over a fixed window.
type RateLimiter struct {
	limit  int64
	window time.Duration
}

func NewRateLimiter(limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: window,
	}
}

// rateLimiterFromEnv reads RATE_LIMIT_MAX_REQUESTS (default 600) and RATE_LIMIT_WINDOW_SECONDS (default 60).
func rateLimiterFromEnv() *RateLimiter {
	limit := int64(600)
	if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_MAX_REQUESTS")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			limit = n
		}
	}
	windowSec := int64(60)
	if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_WINDOW_SECONDS")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			windowSec = n
		}
	}
	return NewRateLimiter(limit, time.Duration(windowSec)*time.Second)
}

// RateLimitMiddleware lets every request through while redis is not connected.
func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	client := config.GetRedisDB()
	if client == nil {
		c.Next()
		return
	}
	key := "ratelimit:" + c.ClientIP()

	count, err := client.Incr(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	if count == 1 {
		if err := client.Expire(c.Request.Context(), key, rl.window).Err(); err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
	}

	if count > rl.limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", int(rl.window.Seconds())),
		})
		return
	}

	c.Next()
}
