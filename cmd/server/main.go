package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	openai "github.com/sashabaranov/go-openai"

	"pulsefit/coach-app/internal/api"
	"pulsefit/coach-app/internal/cache"
	"pulsefit/coach-app/internal/config"
	"pulsefit/coach-app/internal/llm"
	"pulsefit/coach-app/internal/logger"
	"pulsefit/coach-app/internal/prompt"
	"pulsefit/coach-app/internal/repository/mongo"
	"pulsefit/coach-app/internal/service"
	"pulsefit/coach-app/internal/storage"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	appLog, err := logger.New(cfg.Log.Mode)
	if err != nil {
		log.Fatalf("FATAL: Could not initialize logger: %v", err)
	}
	defer appLog.Sync()
	appLog.Info("starting coach app server")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		appLog.Error("could not connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongo.DisconnectDB(dbClient); err != nil {
			appLog.Error("failed to disconnect MongoDB", "error", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	appLog.Info("database connection established", "database", cfg.Database.Name)

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureProfileIndexes(ctx, appDB.Collection("user_profiles"))
		mongo.EnsureWeightIndexes(ctx, appDB.Collection("user_weight_history"))
		mongo.EnsureTrainingPlanIndexes(ctx, appDB.Collection("training_plans"))
		mongo.EnsureNutritionPlanIndexes(ctx, appDB.Collection("user_diet_plans"))
		appLog.Info("index creation process completed")
	}()

	// --- Plan Archive (optional) ---
	var archive storage.PlanArchive
	if cfg.Archive.Enabled() {
		archive, err = storage.NewS3Archive(cfg.Archive)
		if err != nil {
			appLog.Error("failed to initialize plan archive", "error", err)
			os.Exit(1)
		}
	} else {
		appLog.Info("plan archiving disabled, retired plans are deleted without snapshot")
	}

	// --- Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	profileRepo := mongo.NewMongoProfileRepository(appDB)
	weightRepo := mongo.NewMongoWeightRepository(appDB)
	trainingPlanRepo := mongo.NewMongoTrainingPlanRepository(appDB)
	nutritionPlanRepo := mongo.NewMongoNutritionPlanRepository(appDB)

	// --- OpenAI Client, Gateway and Assistant Bridge ---
	clientCfg := openai.DefaultConfig(cfg.OpenAI.APIKey)
	if cfg.OpenAI.BaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAI.BaseURL
	}
	openAIClient := openai.NewClientWithConfig(clientCfg)

	gateway := llm.NewGateway(openAIClient, cfg.OpenAI.Model,
		cfg.OpenAI.NutritionTimeout, cfg.OpenAI.TrainingTimeout, appLog)
	bridge := llm.NewSessionBridge(openAIClient, cfg.OpenAI.AssistantID,
		cfg.OpenAI.AssistantModel, prompt.AssistantPersona,
		cfg.OpenAI.PollInterval, cfg.OpenAI.MaxPollWait, appLog)

	// --- Services ---
	contextCache := cache.New(cfg.Cache.ContextTTL, nil)
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	profileService := service.NewProfileService(profileRepo, weightRepo)
	planService := service.NewPlanService(profileRepo, weightRepo, trainingPlanRepo,
		nutritionPlanRepo, gateway, archive, appLog, nil)
	chatService := service.NewChatService(profileRepo, trainingPlanRepo,
		contextCache, bridge, appLog)

	// --- Router ---
	if cfg.Log.Mode == "prod" || cfg.Log.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, cfg.JWT.Secret, authService, profileService,
		planService, chatService, archive, appLog)

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.OpenAI.TrainingTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	appLog.Info("server starting", "address", cfg.Server.Address)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("listen and serve error", "error", err)
			os.Exit(1)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		appLog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	appLog.Info("server exiting")
}
