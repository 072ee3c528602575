package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Void-Roleplay/backend/internal/api"
	"github.com/Void-Roleplay/backend/internal/config"
	redisdirectory "github.com/Void-Roleplay/backend/internal/directory/redis"
	"github.com/Void-Roleplay/backend/internal/factory"
	"github.com/Void-Roleplay/backend/internal/model"
	"github.com/Void-Roleplay/backend/internal/platform"
	"github.com/Void-Roleplay/backend/internal/platform/bridge"
	"github.com/Void-Roleplay/backend/internal/services/linking"
	"github.com/Void-Roleplay/backend/internal/services/reconcile"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg := config.Default()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			logger.Error("failed to load config", slog.String("path", path), slog.String("error", err.Error()))
			os.Exit(1)
		}
		cfg = loaded
	}

	// Build factory config
	factoryCfg := factory.Config{
		Logger:  logger,
		Backend: cfg.Directory.Backend,
	}
	if backend := os.Getenv("STORAGE_TYPE"); backend != "" {
		factoryCfg.Backend = backend
	}

	// Configure Redis if the directory backend is redis
	if factoryCfg.Backend == factory.BackendRedis {
		redisURL := cfg.Directory.RedisURL
		if url := os.Getenv("REDIS_URL"); url != "" {
			redisURL = url
		}
		if redisURL == "" {
			logger.Error("redis_url required when directory backend is redis")
			os.Exit(1)
		}
		redisCfg := redisdirectory.DefaultConfig()
		redisCfg.URL = redisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	// One bridge adapter per configured platform gateway
	adapters := make(map[model.Platform]platform.Adapter)
	groups := make(map[model.Platform]reconcile.PlatformGroups)
	verifyTTL := make(map[model.Platform]time.Duration, len(cfg.Platforms))
	for p, pc := range cfg.Platforms {
		if pc.GatewayURL == "" {
			logger.Warn("platform has no gateway configured", slog.String("platform", string(p)))
			continue
		}
		adapters[p] = bridge.New(bridge.Config{
			Platform:   p,
			GatewayURL: pc.GatewayURL,
			// Discord principals can be messaged outside an active
			// session; TeamSpeak guests cannot
			Unsolicited: p == model.PlatformDiscord,
		})
		groups[p] = reconcile.PlatformGroups{
			Baseline:   pc.BaselineGroup,
			Unverified: pc.UnverifiedGroup,
		}
		verifyTTL[p] = pc.VerifyTTL
	}
	factoryCfg.Adapters = adapters
	factoryCfg.PlatformGroups = groups
	factoryCfg.LinkingConfig = linking.Config{VerifyTTL: verifyTTL}

	// Create application factory
	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		LinkingService: app.LinkingService,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Server.ListenAddr
	serverConfig.Port = cfg.Server.Port
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Expire stale verifications in the background
	go app.LinkingService.RunSweeper(ctx, cfg.Linking.SweepInterval)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
