package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/resulta/resulta-gateway/internal/config"
	"github.com/resulta/resulta-gateway/internal/handler"
	"github.com/resulta/resulta-gateway/internal/middleware"
	"github.com/resulta/resulta-gateway/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Result       *handler.ResultHandler
	News         *handler.NewsHandler
	Notification *handler.NotificationHandler
	UIConfig     *handler.UIConfigHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// The refresh limiter is owned by the caller, which stops it on shutdown.
func SetupRouter(handlers *Handlers, cfg *config.Config, refreshLimiter *middleware.RateLimiter) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── Public Group (No Auth) ────────────────────────────────────────
	publicAPI := router.Group("/api/v1/public")
	{
		publicAPI.GET("/ui-config", handlers.UIConfig.Get)
	}

	api := router.Group("/api/v1")
	api.Use(middleware.RequireUser(cfg.JWTSecret))
	{
		api.GET("/results", handlers.Result.List)
		api.GET("/results/grouped", handlers.Result.Grouped)
		api.GET("/results/grouped-records", handlers.Result.GroupedRecords)
		api.GET("/results/export", handlers.Result.Export)
		api.POST("/refresh", refreshLimiter.Middleware(), handlers.Result.Refresh)

		api.GET("/news", handlers.News.List)
		api.POST("/news/:id/read", handlers.News.MarkRead)
		api.POST("/news/read-all", handlers.News.MarkAllRead)

		api.GET("/notifications", handlers.Notification.List)
		api.GET("/notifications/unread-count", handlers.Notification.UnreadCount)
		api.POST("/notifications/:id/read", handlers.Notification.MarkRead)
		api.POST("/notifications/read-all", handlers.Notification.MarkAllRead)
	}

	return router
}
