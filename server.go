package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/handlers"
	"github.com/mmdatafocus/inventory_backend/middlewares"
	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

func newRouter(logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(middlewares.MetricsMiddleware())
	r.Use(func(c *gin.Context) {
		// Probes and metrics are served before the store is up.
		switch c.Request.URL.Path {
		case "/healthz", "/metrics":
			c.Next()
			return
		}
		// Gate the API on the store being connected.
		if config.GetDB() == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "store is not connected yet", "reconnect": true})
			return
		}
		c.Next()
	})

	corsConfig := cors.DefaultConfig()
	// In production the allowlist comes from CORS_ALLOWED_ORIGINS (comma-separated); elsewhere all origins pass.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization", middlewares.CorrelationHeader)
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition", middlewares.CorrelationHeader)
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	if strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		r.Use(rateLimiterFromEnv().RateLimitMiddleware)
	}

	r.Use(middlewares.AuthMiddleware())
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	r.GET("/healthz", handlers.HealthHandler())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/login", handlers.LoginHandler())

	api := r.Group("/api", middlewares.RequireActor())
	handlers.RegisterLookups(api)
	handlers.RegisterUsers(api)
	handlers.RegisterAudiences(api)
	handlers.RegisterSoftware(api)
	handlers.RegisterNetworkSettings(api)
	handlers.RegisterEquipment(api)
	handlers.RegisterConsumables(api)
	handlers.RegisterTypesConsumables(api)
	handlers.RegisterInventories(api)
	handlers.RegisterEditSessions(api)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return r
}

// logChanges writes every committed save or delete to the log at debug level.
func logChanges(logger *logrus.Logger) func() {
	return models.Changes.Subscribe(func(ev models.ChangeEvent) {
		logger.WithFields(logrus.Fields{
			"field":  "changes",
			"entity": ev.Entity,
			"id":     ev.Id,
			"kind":   ev.Kind,
		}).Debug("record changed")
	})
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		gin.SetMode(gin.ReleaseMode)
	}
	r := newRouter(logger)

	// Listen before connecting so health probes are answered while the store comes up.
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	config.ConnectDatabaseWithRetry()
	if os.Getenv("REDIS_ADDRESS") != "" {
		config.ConnectRedisWithRetry()
	} else {
		logger.WithFields(logrus.Fields{"field": "redis"}).Warn("REDIS_ADDRESS not set; running without cache and edit locks")
	}

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		if err := models.MigrateTable(db); err != nil {
			logger.WithFields(logrus.Fields{"field": "migrations"}).Fatal(err.Error())
		}
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	unsubscribe := logChanges(logger)
	defer unsubscribe()

	log.Println("Server started successfully on port " + port)

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

// customErrorLogger logs the errors handlers attached to the gin context.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
