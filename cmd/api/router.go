package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bloghub-backend/internal/shared/middleware"
	"bloghub-backend/pkg/container"
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
		v1.GET("/health", healthCheckHandler(c))

		setupPostRoutes(v1, c)
		setupGeneratorRoutes(v1, c)
	}

	return router
}

// ========================================
// POST ROUTES
// ========================================
func setupPostRoutes(v1 *gin.RouterGroup, c *container.Container) {
	authRequired := middleware.AuthMiddleware(c.AuthManager)

	posts := v1.Group("/posts")
	{
		posts.GET("", c.PostHandler.ListPosts)
		posts.POST("", authRequired, c.PostHandler.CreatePost)
		posts.GET("/:slug", c.PostHandler.GetPost)
		posts.PUT("/:id", authRequired, c.PostHandler.UpdatePost)
		posts.DELETE("/:id", authRequired, c.PostHandler.DeletePost)
	}

	v1.GET("/categories", c.PostHandler.ListCategories)

	me := v1.Group("/me")
	me.Use(authRequired)
	{
		me.GET("/posts", c.PostHandler.ListMyPosts)
	}
}

// ========================================
// GENERATOR ROUTES
// ========================================
func setupGeneratorRoutes(v1 *gin.RouterGroup, c *container.Container) {
	v1.POST("/generate", middleware.AuthMiddleware(c.AuthManager), c.GeneratorHandler.Generate)
}

// ========================================
// HEALTH CHECK
// ========================================
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		dbStatus := "ok"
		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			dbStatus = "down"
		}

		cacheStatus := "ok"
		if err := c.Cache.Ping(ctx.Request.Context()); err != nil {
			cacheStatus = "down"
		}

		status := http.StatusOK
		if dbStatus != "ok" {
			status = http.StatusServiceUnavailable
		}

		ctx.JSON(status, gin.H{
			"status":  dbStatus,
			"cache":   cacheStatus,
			"version": c.Config.App.Version,
		})
	}
}
