package main

import (
	"fmt"
	"os"

	"github.com/clarivo/clarivo-backend/internal/clients/speechengine"
	"github.com/clarivo/clarivo-backend/internal/db"
	"github.com/clarivo/clarivo-backend/internal/handlers"
	"github.com/clarivo/clarivo-backend/internal/logger"
	"github.com/clarivo/clarivo-backend/internal/middleware"
	"github.com/clarivo/clarivo-backend/internal/repos"
	"github.com/clarivo/clarivo-backend/internal/server"
	"github.com/clarivo/clarivo-backend/internal/services"
	"github.com/clarivo/clarivo-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	sessionRepo := repos.NewPracticeSessionRepo(thePG, log)

	// Clients
	log.Info("Setting up clients from main...")
	engineCfg := speechengine.ConfigFromEnv(log)
	engineClient, err := speechengine.New(log, engineCfg)
	if err != nil {
		log.Error("Could not init speech engine client", "error", err)
		os.Exit(1)
	}

	// Services
	log.Info("Setting up services from main...")
	scoringService := services.NewScoringService(thePG, log, sessionRepo, engineClient)
	sessionService := services.NewSessionService(thePG, log, sessionRepo)
	statsService := services.NewStatsService(thePG, log, sessionRepo)
	speechService := services.NewSpeechService(log, engineClient)

	// Handlers
	log.Info("Setting up handlers from main...")
	healthHandler := handlers.NewHealthHandler(postgresService)
	speechHandler := handlers.NewSpeechHandler(log, scoringService, speechService, engineCfg.MaxAudioBytes)
	sessionHandler := handlers.NewSessionHandler(sessionService, statsService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, jwtSecretKey)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware: authMiddleware,
		HealthHandler:  healthHandler,
		SpeechHandler:  speechHandler,
		SessionHandler: sessionHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
