package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/seoulscene/magazine-api/internal/config"
	"github.com/seoulscene/magazine-api/internal/database"
	"github.com/seoulscene/magazine-api/internal/service"
)

// NewRouter creates and configures the Gin router. db may be nil in
// tests; the health endpoint then skips the database probe.
func NewRouter(services *service.Services, db *database.DB, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	articleHandler := NewArticleHandler(services, cfg, log)
	categoryHandler := NewCategoryHandler(services, cfg, log)
	shareHandler := NewShareHandler(services, log)
	subscriptionHandler := NewSubscriptionHandler(services, log)
	adminHandler := NewAdminHandler(services, cfg, log)

	// Health check
	router.GET("/health", healthCheck(db))

	// Public API
	api := router.Group("/api")
	{
		articles := api.Group("/articles")
		{
			articles.GET("", articleHandler.List)
			articles.GET("/:id", articleHandler.Get)
			articles.GET("/:id/related", articleHandler.Related)
			articles.GET("/:id/shares", shareHandler.Stats)
			articles.POST("/:id/views", articleHandler.RecordView)
			articles.POST("/:id/likes", articleHandler.RecordLike)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", categoryHandler.List)
			categories.GET("/:slug/articles", categoryHandler.Articles)
		}

		api.GET("/search", articleHandler.Search)
		api.POST("/share", shareHandler.Record)

		subscriptions := api.Group("/subscriptions")
		{
			subscriptions.POST("", subscriptionHandler.Subscribe)
			subscriptions.GET("/verify", subscriptionHandler.Verify)
			subscriptions.POST("/unsubscribe", subscriptionHandler.Unsubscribe)
		}
	}

	// Admin API (no authentication, mirrors the admin panel surface)
	admin := router.Group("/admin")
	{
		articles := admin.Group("/articles")
		{
			articles.GET("", adminHandler.ListArticles)
			articles.POST("", adminHandler.CreateArticle)
			articles.GET("/:id", adminHandler.GetArticle)
			articles.PUT("/:id", adminHandler.UpdateArticle)
			articles.DELETE("/:id", adminHandler.DeleteArticle)
		}

		categories := admin.Group("/categories")
		{
			categories.POST("", adminHandler.CreateCategory)
			categories.PUT("/:id", adminHandler.UpdateCategory)
			categories.DELETE("/:id", adminHandler.DeleteCategory)
		}

		subscriptions := admin.Group("/subscriptions")
		{
			subscriptions.GET("", adminHandler.ListSubscriptions)
			subscriptions.GET("/stats", adminHandler.SubscriptionStats)
			subscriptions.GET("/export", adminHandler.ExportSubscriptions)
		}

		admin.GET("/shares/top", adminHandler.TopShares)
	}

	return router
}

// healthCheck reports liveness plus a database probe
func healthCheck(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "magazine-api",
		}

		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := db.HealthCheck(ctx); err != nil {
				response["status"] = "unhealthy"
				response["database"] = "down"
				c.JSON(http.StatusServiceUnavailable, response)
				return
			}
			response["database"] = "up"
			response["open_connections"] = db.Stats().OpenConnections
		}

		c.JSON(http.StatusOK, response)
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
