package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/EduQuest-2025/quizplayer-service/internal/services"
	"github.com/EduQuest-2025/quizplayer-service/internal/utils"
	"github.com/EduQuest-2025/quizplayer-service/internal/validator"
)

type HandlerManager struct {
	activityHandler *ActivityHandler
	sessionHandler  *SessionHandler
	watchHandler    *WatchHandler
}

func NewHandlerManager(
	activityService services.ActivityService,
	playerService services.PlayerService,
	importExport services.ImportExportService,
	v *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		activityHandler: NewActivityHandler(activityService, importExport, v, logger),
		sessionHandler:  NewSessionHandler(playerService, v, logger),
		watchHandler:    NewWatchHandler(activityService, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Activity catalog and authoring routes
		activities := v1.Group("/activities")
		{
			activities.POST("", hm.activityHandler.CreateActivity)
			activities.GET("", hm.activityHandler.ListActivities)
			activities.GET("/:id", hm.activityHandler.GetActivity)
			activities.PUT("/:id", hm.activityHandler.UpdateActivity)
			activities.DELETE("/:id", hm.activityHandler.DeleteActivity)

			// Unit sheet import/export
			activities.POST("/:id/units/import", hm.activityHandler.ImportUnits)
			activities.GET("/:id/units/export", hm.activityHandler.ExportUnits)

			// Live catalog subscription
			activities.GET("/watch", hm.watchHandler.WatchActivities)
		}

		// Play session routes
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.StartSession)
			sessions.GET("/:id/page", hm.sessionHandler.GetPage)
			sessions.POST("/:id/answers", hm.sessionHandler.SubmitPage)
			sessions.POST("/:id/advance", hm.sessionHandler.Advance)
			sessions.GET("/:id/summary", hm.sessionHandler.GetSummary)
			sessions.DELETE("/:id", hm.sessionHandler.CloseSession)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "quizplayer-service",
		})
	})
}
