package server

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/TeamMacLean/komondor-api-sub000/internal/handlers"
	"github.com/TeamMacLean/komondor-api-sub000/internal/middleware"
)

type RouterConfig struct {
	ServiceName string

	AuthHandler      *handlers.AuthHandler
	AuthMiddleware   *middleware.AuthMiddleware
	HierarchyHandler *handlers.HierarchyHandler
	RunHandler       *handlers.RunHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(otelgin.Middleware(cfg.ServiceName))

	// Health
	r.GET("/healthcheck", handlers.HealthCheck)

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Hierarchy
		if cfg.HierarchyHandler != nil {
			protected.POST("/groups", cfg.HierarchyHandler.CreateGroup)
			protected.POST("/projects", cfg.HierarchyHandler.CreateProject)
			protected.POST("/samples", cfg.HierarchyHandler.CreateSample)
			protected.GET("/samples/:id", cfg.HierarchyHandler.GetSample)
		}

		// Runs and ingestion
		if cfg.RunHandler != nil {
			protected.POST("/runs", cfg.RunHandler.CreateRun)
			protected.GET("/runs/:id", cfg.RunHandler.GetRun)
			protected.POST("/runs/:id/reads", cfg.RunHandler.ProcessReadFiles)
			protected.POST("/runs/:id/additional-files", cfg.RunHandler.ProcessAdditionalFiles)
			protected.POST("/runs/:id/verify", cfg.RunHandler.VerifyRun)
		}
	}

	return r
}
