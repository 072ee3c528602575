package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/Void-Roleplay/backend/internal/dependencies/clock"
	"github.com/Void-Roleplay/backend/internal/directory"
	"github.com/Void-Roleplay/backend/internal/directory/memory"
	redisdirectory "github.com/Void-Roleplay/backend/internal/directory/redis"
	"github.com/Void-Roleplay/backend/internal/model"
	"github.com/Void-Roleplay/backend/internal/platform"
	"github.com/Void-Roleplay/backend/internal/services/linking"
	"github.com/Void-Roleplay/backend/internal/services/reconcile"
	"github.com/Void-Roleplay/backend/internal/services/verification"
)

// Directory backend constants
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Directory directory.Directory

	// External dependencies
	Clock    clock.Clock
	Adapters map[model.Platform]platform.Adapter

	// Services
	Store          *verification.Store
	Reconciler     *reconcile.Reconciler
	LinkingService *linking.Service
}

// Config holds configuration for the application factory
type Config struct {
	// Adapters maps each platform to its gateway-backed adapter (required)
	Adapters map[model.Platform]platform.Adapter
	// PlatformGroups holds the protected baseline/unverified groups per platform
	PlatformGroups map[model.Platform]reconcile.PlatformGroups
	// LinkingConfig holds verification window settings (optional)
	// If zero value, defaults to linking.DefaultConfig()
	LinkingConfig linking.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// Backend selects the directory backend ("memory" or "redis")
	// If empty, defaults to "memory"
	Backend string
	// RedisConfig holds Redis connection settings (required if Backend is "redis")
	RedisConfig *redisdirectory.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create the directory based on backend
	var dir directory.Directory
	backend := cfg.Backend
	if backend == "" {
		backend = BackendMemory
	}

	switch backend {
	case BackendMemory:
		dir = memory.New()
	case BackendRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when Backend is redis")
		}
		redisDir, err := redisdirectory.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		dir = redisDir
	default:
		return nil, errors.New("invalid Backend: must be 'memory' or 'redis'")
	}

	clk := clock.New()

	return newWithDependencies(dir, clk, cfg.Adapters, cfg.PlatformGroups, cfg.LinkingConfig, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(dir directory.Directory, clk clock.Clock, adapters map[model.Platform]platform.Adapter, groups map[model.Platform]reconcile.PlatformGroups, linkingCfg linking.Config, logger *slog.Logger) *App {
	store := verification.NewStore()
	reconciler := reconcile.New(groups, logger)
	linkingService := linking.New(dir, adapters, store, reconciler, clk, logger, linkingCfg)

	return &App{
		Directory:      dir,
		Clock:          clk,
		Adapters:       adapters,
		Store:          store,
		Reconciler:     reconciler,
		LinkingService: linkingService,
	}
}
