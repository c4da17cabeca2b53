package api

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/speakwise/speech-api/api/analyses"
	"github.com/speakwise/speech-api/api/auth"
	"github.com/speakwise/speech-api/api/health"
	"github.com/speakwise/speech-api/api/status"
	"github.com/speakwise/speech-api/api/types"
	"github.com/speakwise/speech-api/api/upload"
	"github.com/speakwise/speech-api/api/version"
	"github.com/speakwise/speech-api/api/webhooks"
	_ "github.com/speakwise/speech-api/docs/swagger"
	"github.com/speakwise/speech-api/pkg/config"
)

// webhookMaxBodyBytes caps transcode notification payloads. Notifications
// are small JSON documents, so anything bigger is garbage.
const webhookMaxBodyBytes = 1 << 20

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, rateLimiters *sync.Map, cleanupStop chan struct{}, cleanupInitialized *sync.Once) error {
	// Register public routes (no rate limiting)
	health.RegisterRoutes(engine, deps)
	version.RegisterRoutes(engine, deps)

	// Prometheus metrics endpoint
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Register Swagger documentation route
	engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(301, "/docs/index.html")
	})
	docsGroup := engine.Group("/docs")
	docsGroup.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Setup 404 handler
	engine.NoRoute(NotFoundHandler())

	// API v1 routes
	v1 := engine.Group("/api/v1")

	// Load config for API routes
	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if deps == nil {
		return fmt.Errorf("dependencies are nil")
	}

	authHandler := auth.NewHandler(deps.AuthService)
	authHandler.SetSkipAuth(cfg.Auth.SkipAuth)

	// Register upload routes with strict rate limiting (2 req/s, burst of 5).
	// The body limit here is the upload budget, not the general request cap.
	uploadGroup := v1.Group("/upload")
	uploadGroup.Use(authHandler.Middleware())
	uploadGroup.Use(RequestSizeLimit(cfg.Server.MaxUploadBytes))
	uploadGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 2, 5))
	upload.RegisterRoutes(uploadGroup, deps)

	// Register webhook routes. The media host authenticates with a signature
	// header, not a bearer token, so these stay outside the auth middleware.
	webhookGroup := v1.Group("/webhooks")
	webhookGroup.Use(RequestSizeLimit(webhookMaxBodyBytes))
	webhookGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 10, 20))
	webhooks.RegisterRoutes(webhookGroup, deps)

	// Register status polling routes with general rate limiting (10 req/s, burst of 20)
	statusGroup := v1.Group("/status")
	statusGroup.Use(authHandler.Middleware())
	statusGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 10, 20))
	status.RegisterRoutes(statusGroup, deps)

	// Register analysis dashboard routes with general rate limiting (10 req/s, burst of 20)
	analysesGroup := v1.Group("/analyses")
	analysesGroup.Use(authHandler.Middleware())
	analysesGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 10, 20))
	analyses.RegisterRoutes(analysesGroup, deps)

	return nil
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(404, gin.H{
			"status":  "error",
			"message": "The requested endpoint was not found",
			"path":    c.Request.URL.Path,
		})
	}
}
