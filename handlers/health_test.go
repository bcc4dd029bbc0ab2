package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/handlers"
)

func TestHealthWithoutDatabase(t *testing.T) {
	previous := config.GetDB()
	config.SetDB(nil)
	defer config.SetDB(previous)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/healthz", handlers.HealthHandler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}
