package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"campaign-bot/internal/api"
	"campaign-bot/internal/api/handlers"
	"campaign-bot/internal/repository"
	"campaign-bot/internal/service"
	"campaign-bot/pkg/auth"
	"campaign-bot/pkg/config"
	"campaign-bot/pkg/logger"
	"campaign-bot/pkg/postgres"

	"go.uber.org/zap"
)

// @title Campaign Bot API
// @version 1.0
// @description FAQ chatbot for the Mussab Ali 2025 Jersey City mayoral campaign
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email info@ali2025.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting campaign bot service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	knowledgeRepo := repository.NewKnowledgeRepository(db, appLogger)
	pageRepo := repository.NewPageRepository(db, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Initialize services
	authService := service.NewAuthService(&cfg.Admin, jwtManager, appLogger)

	knowledgeService := service.NewKnowledgeService(knowledgeRepo, appLogger)
	if err := knowledgeService.Load(ctx); err != nil {
		// Keep serving: every request gets the no-information reply until an
		// admin reload succeeds.
		appLogger.Error("Initial knowledge load failed", zap.Error(err))
	}

	contentService := service.NewContentService(pageRepo, knowledgeService, &cfg.Content, appLogger)

	generator, err := service.NewGenerator(cfg, appLogger)
	if err != nil {
		appLogger.Error("Text generation unavailable, replies will degrade to raw matches", zap.Error(err))
	} else {
		defer generator.Close()
	}

	retrievalService := service.NewRetrievalService(&cfg.Retrieval, appLogger)
	responderService := service.NewResponderService(generator, contentService, &cfg.Retrieval, &cfg.LLM, appLogger)
	chatService := service.NewChatService(knowledgeService, retrievalService, responderService, appLogger)

	// Start the content refresh scheduler
	if err := contentService.StartScheduler(); err != nil {
		appLogger.Error("Failed to start content scheduler", zap.Error(err))
	}
	defer contentService.Stop()

	providerName := "none"
	if generator != nil {
		providerName = generator.Name()
	}

	// Initialize handlers
	chatHandler := handlers.NewChatHandler(chatService, appLogger)
	statusHandler := handlers.NewStatusHandler(knowledgeService, contentService, providerName, appLogger)
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	adminHandler := handlers.NewAdminHandler(knowledgeService, contentService, appLogger)

	// Setup router
	app := api.SetupRouter(chatHandler, statusHandler, authHandler, adminHandler, jwtManager, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
