package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clarivo/clarivo-backend/internal/db"
)

var processStart = time.Now()

type HealthHandler struct {
	postgres *db.PostgresService
}

func NewHealthHandler(postgres *db.PostgresService) *HealthHandler {
	return &HealthHandler{postgres: postgres}
}

// GET /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	database := "disconnected"
	if h.postgres != nil && h.postgres.Health(c.Request.Context()) {
		database = "connected"
	}
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"uptime":      time.Since(processStart).Seconds(),
		"environment": env,
		"database":    database,
	})
}
