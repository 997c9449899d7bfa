package api

import (
	"os"
	"path/filepath"

	"campaign-bot/docs"
	"campaign-bot/internal/api/handlers"
	"campaign-bot/pkg/auth"
	"campaign-bot/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func SetupRouter(
	chatHandler *handlers.ChatHandler,
	statusHandler *handlers.StatusHandler,
	authHandler *handlers.AuthHandler,
	adminHandler *handlers.AdminHandler,
	jwtManager *auth.JWTManager,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	// Swagger
	_ = docs.SwaggerInfo // ensure docs package is imported and init() is called
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Static files (chat widget)
	webStaticPath := findWebStaticPath(appLogger)
	if webStaticPath != "" {
		appLogger.Info("Serving static files", zap.String("path", webStaticPath))
		app.Static("/static", webStaticPath)
	} else {
		appLogger.Warn("Web static directory not found, static files will not be served")
	}

	// Serve the chat page for root path
	app.Get("/", func(c *fiber.Ctx) error {
		indexPath := filepath.Join(webStaticPath, "index.html")
		if webStaticPath == "" || !fileExists(indexPath) {
			return c.Status(404).SendString("Chat interface not found. Please ensure web/static/index.html exists.")
		}
		return c.SendFile(indexPath)
	})

	// Public API
	api := app.Group("/api/v1")
	api.Post("/chat", chatHandler.Chat)
	api.Get("/health", statusHandler.Health)

	// Admin auth routes (public)
	api.Post("/admin/login", authHandler.Login)
	api.Post("/admin/token/refresh", authHandler.RefreshToken)

	// Protected admin routes
	admin := api.Group("/admin", middleware.AuthMiddleware(jwtManager, appLogger))
	admin.Post("/refresh", adminHandler.ReloadKnowledge)
	admin.Post("/content/refresh", adminHandler.RefreshContent)
	admin.Get("/pages", adminHandler.ListPages)

	return app
}

// findWebStaticPath finds the path to web/static directory
func findWebStaticPath(logger *zap.Logger) string {
	cwd, _ := os.Getwd()
	logger.Info("Current working directory", zap.String("cwd", cwd))

	// Try paths relative to current working directory
	paths := []string{
		"./web/static",
		"web/static",
		"../web/static",
		"../../web/static",
	}

	for _, path := range paths {
		if fileExists(filepath.Join(path, "index.html")) {
			logger.Info("Found web static path", zap.String("path", path))
			return path
		}
	}

	return ""
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
