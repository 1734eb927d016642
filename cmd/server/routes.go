package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"savingz.backend/internal/interfaces/http/handlers"
	"savingz.backend/internal/interfaces/http/middleware"
)

const (
	serviceName    = "savingz-backend"
	serviceVersion = "1.0.0"
)

type routeDeps struct {
	userHandler         *handlers.UserHandler
	savingsHandler      *handlers.SavingsHandler
	leaderboardHandler  *handlers.LeaderboardHandler
	notificationHandler *handlers.NotificationHandler
	marketHandler       *handlers.MarketHandler
	authMiddleware      gin.HandlerFunc
	adminMiddleware     gin.HandlerFunc
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, Idempotency-Key, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID, X-Idempotency-Hit")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": serviceVersion,
		})
	})
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong"})
		})

		// Public
		v1.GET("/leaderboard", d.leaderboardHandler.GetLeaderboard)
		v1.GET("/prices", d.marketHandler.ListPrices)

		// Authenticated saver routes
		user := v1.Group("/user")
		user.Use(d.authMiddleware)
		{
			user.POST("/register", d.userHandler.Register)
			user.GET("/profile", d.userHandler.GetProfile)
			user.POST("/profile/update", d.userHandler.UpdateProfile)
			user.PUT("/push-token", d.userHandler.RegisterPushToken)

			user.POST("/save", middleware.IdempotencyMiddleware(), d.savingsHandler.Save)
			user.GET("/savings", d.savingsHandler.ListSavings)

			user.GET("/notifications", d.notificationHandler.List)
			user.GET("/notifications/unread-count", d.notificationHandler.UnreadCount)
			user.POST("/notifications/read", d.notificationHandler.MarkRead)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware, d.adminMiddleware)
		{
			admin.POST("/send-notification", d.notificationHandler.Broadcast)
		}
	}
}
