package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-backend/internal/shared/middleware"
	"library-backend/internal/shared/response"
	"library-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(v1, c)
		setupBookRoutes(v1, c)
		setupEventRoutes(v1, c)
	}

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := v1.Group("/auth")
	{
		auth.POST("/signup", c.UserHandler.Signup)
		auth.POST("/login", c.UserHandler.Login)
	}
}

// ========================================
// BOOK ROUTES
// ========================================
// Reads are public; mutations require a logged-in user.
func setupBookRoutes(v1 *gin.RouterGroup, c *container.Container) {
	books := v1.Group("/books")
	{
		books.GET("", c.CatalogHandler.ListBooks)
		books.GET("/search", c.CatalogHandler.SearchBooks)

		authed := books.Group("")
		authed.Use(middleware.AuthMiddleware(c.JWTManager))
		{
			authed.POST("", c.CatalogHandler.AddBook)
			authed.POST("/remove", c.CatalogHandler.RemoveBook)
			authed.POST("/borrow", c.CatalogHandler.BorrowBook)
		}
	}
}

// ========================================
// EVENT STREAM ROUTES
// ========================================
// The SSE stream is unauthenticated, matching the open broadcast of the
// inventory change feed.
func setupEventRoutes(v1 *gin.RouterGroup, c *container.Container) {
	v1.GET("/events", c.EventsHandler.Stream)
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		health := gin.H{
			"status":      "ok",
			"environment": c.Config.App.Environment,
			"subscribers": c.Hub.Len(),
		}

		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			health["status"] = "degraded"
			health["database"] = err.Error()
			response.Success(ctx, http.StatusServiceUnavailable, health)
			return
		}
		health["database"] = "up"

		if err := c.Cache.Ping(ctx.Request.Context()); err != nil {
			health["cache"] = "down"
		} else {
			health["cache"] = "up"
		}

		response.Success(ctx, http.StatusOK, health)
	}
}
