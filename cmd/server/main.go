package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/arclight-ai/arclight/internal/analytics"
	"github.com/arclight-ai/arclight/internal/config"
	"github.com/arclight-ai/arclight/internal/gateway"
	"github.com/arclight-ai/arclight/internal/platform/logger"
	"github.com/arclight-ai/arclight/internal/platform/otel"
	"github.com/arclight-ai/arclight/internal/server"
	"github.com/arclight-ai/arclight/internal/settings"
	"github.com/arclight-ai/arclight/internal/store/sqlite"
	"github.com/arclight-ai/arclight/internal/version"

	// Import providers to trigger init() registration
	_ "github.com/arclight-ai/arclight/internal/llm/providers/anthropic"
	_ "github.com/arclight-ai/arclight/internal/llm/providers/kimi"
	_ "github.com/arclight-ai/arclight/internal/llm/providers/openaicompat"
)

func main() {
	log, err := logger.New(logger.DefaultConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go version.CheckForUpdates(log)

	// Settings chain: config-seeded values first, then process env, then
	// Redis when enabled. Providers resolve secrets and tier flags here.
	store := buildSettings(cfg, log)

	repo, err := sqlite.NewSQLiteStorage(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer func() {
		_ = repo.Close()
	}()

	ingestor := analytics.NewIngestor(log, repo)
	ingestor.Start(ctx)
	defer ingestor.Stop()

	analyticsSvc := analytics.NewService(repo)

	if cfg.Telemetry.Enabled {
		shutdown, err := otel.InitTracer("arclight", log, os.Stdout)
		if err != nil {
			log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdown(shutdownCtx)
			}()
		}
	}

	service := gateway.NewService(log, ingestor, nil)
	chatCount := gateway.BootstrapProviders(service, cfg.Providers, store, log)
	imageCount := gateway.BootstrapImageClients(service, cfg.ImageProviders, store, log)
	log.Info("Providers registered",
		zap.Int("chat", chatCount),
		zap.Int("image", imageCount),
	)

	srv := server.New(cfg, log, service, analyticsSvc, version.AppVersion)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func buildSettings(cfg *config.Config, log *zap.Logger) settings.Store {
	chain := settings.Chain{settings.NewMemoryStore(cfg.Settings), settings.EnvStore{}}

	if cfg.Redis.Enabled {
		redisStore, err := settings.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Error("Redis unavailable, continuing without it", zap.Error(err))
		} else {
			chain = append(chain, redisStore)
		}
	}

	return chain
}
