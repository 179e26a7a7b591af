// Package server owns the HTTP surface: engine construction, middleware
// ordering and route registration.
package server

import (
	"net/http"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/arclight-ai/arclight/internal/analytics"
	"github.com/arclight-ai/arclight/internal/config"
	"github.com/arclight-ai/arclight/internal/gateway"
	"github.com/arclight-ai/arclight/internal/server/middleware"
	"github.com/arclight-ai/arclight/internal/server/validator"
)

type Server struct {
	router    *gin.Engine
	config    *config.Config
	logger    *zap.Logger
	service   gateway.Service
	analytics analytics.Service
	validator *validator.Validator
	version   string
}

func New(cfg *config.Config, logger *zap.Logger, service gateway.Service, analyticsSvc analytics.Service, version string) *Server {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(ginzap.RecoveryWithZap(logger, true))
	engine.Use(middleware.Logger(logger))
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware("arclight"))
	}

	s := &Server{
		router:    engine,
		config:    cfg,
		logger:    logger,
		service:   service,
		analytics: analyticsSvc,
		validator: validator.New(),
		version:   version,
	}

	s.SetupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}
