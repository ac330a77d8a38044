package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/clarivo/clarivo-backend/internal/handlers"
	"github.com/clarivo/clarivo-backend/internal/middleware"
)

type RouterConfig struct {
	AuthMiddleware *middleware.AuthMiddleware
	HealthHandler  *handlers.HealthHandler
	SpeechHandler  *handlers.SpeechHandler
	SessionHandler *handlers.SessionHandler
	AllowOrigins   []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	allowOrigins := cfg.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the Clarivo API",
			"version": "1.0.0",
			"endpoints": gin.H{
				"health": "/healthcheck",
				"api":    "/api",
			},
		})
	})

	// Protected
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())
	// Speech
	api.POST("/speech/analyze", cfg.SpeechHandler.Analyze)
	api.POST("/speech/synthesize", cfg.SpeechHandler.Synthesize)
	api.GET("/speech/exercises", cfg.SpeechHandler.ListExercises)
	// Sessions
	api.GET("/sessions", cfg.SessionHandler.ListSessions)
	api.GET("/sessions/:id", cfg.SessionHandler.GetSession)
	api.DELETE("/sessions/:id", cfg.SessionHandler.DeleteSession)
	// Stats
	api.GET("/stats", cfg.SessionHandler.GetStats)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"message": "route " + c.Request.URL.Path + " not found", "code": "not_found"},
		})
	})

	return router
}
