package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/EduQuest-2025/quizplayer-service/internal/cache"
	"github.com/EduQuest-2025/quizplayer-service/internal/config"
	"github.com/EduQuest-2025/quizplayer-service/internal/handlers"
	"github.com/EduQuest-2025/quizplayer-service/internal/models"
	"github.com/EduQuest-2025/quizplayer-service/internal/repositories/postgres"
	"github.com/EduQuest-2025/quizplayer-service/internal/services"
	"github.com/EduQuest-2025/quizplayer-service/internal/session"
	"github.com/EduQuest-2025/quizplayer-service/internal/utils"
	"github.com/EduQuest-2025/quizplayer-service/internal/validator"
	"github.com/EduQuest-2025/quizplayer-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	var logger utils.Logger
	if cfg.IsDevelopment() {
		logger = utils.NewDevelopmentLogger()
	} else {
		logger = utils.NewDefaultLogger()
	}
	slogLogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(&models.Activity{}); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	publisher, err := cfg.Events.CreateEventPublisher(slogLogger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	defer repo.Close()

	v := validator.New()
	cacheService := cache.NewRedisCache(redisClient, slogLogger)
	store := session.NewStore()

	activityService := services.NewActivityService(repo, cacheService, cfg.ActivityCacheTTL, slogLogger, v)
	playerService := services.NewPlayerService(activityService, store, publisher, slogLogger)
	importExport := services.NewImportExportService(repo, cacheService, slogLogger, v)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(activityService, playerService, importExport, v, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
	logger.Info("Server stopped")
}
