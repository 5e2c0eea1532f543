package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pulsefit/coach-app/internal/logger"
	"pulsefit/coach-app/internal/service"
	"pulsefit/coach-app/internal/storage"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	profileService service.ProfileService,
	planService service.PlanService,
	chatService service.ChatService,
	archive storage.PlanArchive,
	log *logger.Logger,
) {
	authHandler := NewAuthHandler(authService)
	profileHandler := NewProfileHandler(profileService, log)
	planHandler := NewPlanHandler(planService, archive, log)
	chatHandler := NewChatHandler(chatService, log)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			c.JSON(http.StatusOK, gin.H{"userId": userID.Hex()})
		})

		profileGroup := protected.Group("/profile")
		{
			profileGroup.GET("", profileHandler.GetProfile)
			profileGroup.PUT("", profileHandler.UpsertProfile)
		}

		weightGroup := protected.Group("/weight")
		{
			weightGroup.POST("", profileHandler.AddWeightSample)
			weightGroup.GET("", profileHandler.WeightHistory)
		}

		planGroup := protected.Group("/plans")
		{
			planGroup.POST("/training/generate", planHandler.GenerateTrainingPlan)
			planGroup.POST("/training/modify", planHandler.ModifyTrainingPlan)
			planGroup.GET("/training/active", planHandler.ActiveTrainingPlan)
			planGroup.GET("/training/history", planHandler.TrainingPlanHistory)

			planGroup.POST("/nutrition/generate", planHandler.GenerateNutritionPlan)
			planGroup.GET("/nutrition/active", planHandler.ActiveNutritionPlan)

			planGroup.GET("/archive/url", planHandler.ArchiveDownloadURL)
		}

		protected.POST("/chat", chatHandler.Chat)
	}
}
