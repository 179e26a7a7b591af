package server

import (
	"github.com/arclight-ai/arclight/internal/server/middleware"
	v1 "github.com/arclight-ai/arclight/internal/server/v1"
)

func (s *Server) SetupRoutes() {
	// 1. Global Middleware
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.ErrorHandler(s.logger))

	// 2. Health Check (Public)
	healthHandler := v1.NewHealthHandler(s.version)
	s.router.GET("/health", healthHandler.Health)

	// 3. API V1 Group
	api := s.router.Group("/v1")
	api.Use(middleware.Auth(s.config.Server.APIKeys))

	limiter := middleware.NewRateLimiter(s.config.RateLimit.RequestsPerSecond, s.config.RateLimit.Burst, s.logger)
	api.Use(limiter.Middleware())
	{
		chatHandler := v1.NewChatHandler(s.service, s.validator)
		api.POST("/chat/completions", chatHandler.CreateCompletion)

		imageHandler := v1.NewImageHandler(s.service, s.validator)
		api.POST("/images/generations", imageHandler.CreateImage)

		modelsHandler := v1.NewModelHandler(s.service)
		api.GET("/models", modelsHandler.ListModels)

		analyticsHandler := v1.NewAnalyticsHandler(s.analytics)
		api.GET("/analytics/usage", analyticsHandler.GetUsage)
		api.GET("/analytics/requests", analyticsHandler.GetRecent)
	}
}
