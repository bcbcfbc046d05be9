package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wildbook-backend/internal/shared/middleware"
	"wildbook-backend/internal/shared/response"
	"wildbook-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(v1, c)
		setupUserRoutes(v1, c)
		setupAnimalRoutes(v1, c)
		setupCategoryRoutes(v1, c)
	}

	return router
}

func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.UserHandler.Register)
		auth.POST("/login", c.UserHandler.Login)
		auth.POST("/logout", middleware.AuthMiddleware(c.JWTManager), c.UserHandler.Logout)
		auth.POST("/forgot-password", c.UserHandler.ForgotPassword)
		auth.POST("/reset-password/:token", c.UserHandler.ResetPassword)
	}
}

func setupUserRoutes(v1 *gin.RouterGroup, c *container.Container) {
	users := v1.Group("/users")
	users.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		users.GET("/me", c.UserHandler.GetProfile)
		users.PUT("/me", c.UserHandler.UpdateAccount)
	}

	hearts := v1.Group("/hearts")
	hearts.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		hearts.GET("", c.UserHandler.ListHearts)
	}
}

func setupAnimalRoutes(v1 *gin.RouterGroup, c *container.Container) {
	animals := v1.Group("/animals")
	{
		animals.GET("", c.AnimalHandler.ListAnimals)
		animals.GET("/page/:page", c.AnimalHandler.ListAnimals)
		animals.GET("/search", c.AnimalHandler.SearchAnimals)
		animals.GET("/near", c.AnimalHandler.NearAnimals)
		animals.GET("/slug/:slug", c.AnimalHandler.GetBySlug)

		animals.GET("/export",
			middleware.AuthMiddleware(c.JWTManager),
			middleware.AdminMiddleware(),
			c.AnimalHandler.ExportAnimals)

		protected := animals.Group("")
		protected.Use(middleware.AuthMiddleware(c.JWTManager))
		{
			protected.POST("", c.AnimalHandler.CreateAnimal)
			protected.GET("/:id/edit", c.AnimalHandler.EditAnimal)
			protected.PUT("/:id", c.AnimalHandler.UpdateAnimal)
			protected.DELETE("/:id", c.AnimalHandler.DeleteAnimal)
			protected.POST("/:id/heart", c.UserHandler.ToggleHeart)
		}
	}
}

func setupCategoryRoutes(v1 *gin.RouterGroup, c *container.Container) {
	categories := v1.Group("/categories")
	{
		categories.GET("", c.AnimalHandler.BrowseCategories)
		categories.GET("/:category", c.AnimalHandler.BrowseCategories)
	}
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		status := gin.H{
			"status":  "ok",
			"version": c.Config.App.Version,
		}

		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
			ctx.JSON(http.StatusServiceUnavailable, status)
			return
		}

		response.Success(ctx, http.StatusOK, status)
	}
}
