package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/invisiblewalls/internal/dependencies/clock"
	"github.com/mcoot/invisiblewalls/internal/dependencies/random"
	"github.com/mcoot/invisiblewalls/internal/model"
	"github.com/mcoot/invisiblewalls/internal/services/auth"
	"github.com/mcoot/invisiblewalls/internal/services/bot"
	"github.com/mcoot/invisiblewalls/internal/services/layout"
	"github.com/mcoot/invisiblewalls/internal/services/results"
	"github.com/mcoot/invisiblewalls/internal/services/rounds"
	"github.com/mcoot/invisiblewalls/internal/services/session"
	"github.com/mcoot/invisiblewalls/internal/storage"
	"github.com/mcoot/invisiblewalls/internal/storage/memory"
	redisstorage "github.com/mcoot/invisiblewalls/internal/storage/redis"
	"github.com/mcoot/invisiblewalls/internal/web/live"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	RoundsService     *rounds.Service
	LayoutGenerator   *layout.Generator
	SessionController *session.Controller
	ResultsService    *results.Service
	AuthService       *auth.Service
	BotService        *bot.Service
	HubManager        *live.HubManager
	Broadcaster       *live.Broadcaster
}

// Config holds configuration for the application factory
type Config struct {
	// RoundsFile is a round table file to load (optional)
	// If empty, a table persisted in storage is used, else the default table
	RoundsFile string
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// SessionConfig holds the round timings (optional)
	// If zero value, defaults to session.DefaultConfig()
	SessionConfig session.Config
	// LayoutConfig holds the board generator tuning (optional)
	// If zero value, defaults to layout.DefaultConfig()
	LayoutConfig layout.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	app := newWithDependencies(store, clock.New(), random.New(), cfg, logger)

	if err := app.loadRounds(context.Background(), cfg.RoundsFile); err != nil {
		return nil, err
	}
	return app, nil
}

// loadRounds activates the configured round table
func (a *App) loadRounds(ctx context.Context, path string) error {
	if path != "" {
		if err := a.RoundsService.LoadFromFile(ctx, path); err != nil {
			return fmt.Errorf("loading round table: %w", err)
		}
		return nil
	}
	err := a.RoundsService.LoadFromStorage(ctx)
	if err != nil && !errors.Is(err, model.ErrRoundTableNotFound) {
		return fmt.Errorf("loading stored round table: %w", err)
	}
	return nil
}

// Close stops scheduled work and live connections
func (a *App) Close() error {
	a.SessionController.Stop()
	a.HubManager.Close()
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *App {
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}
	sessionCfg := cfg.SessionConfig
	if sessionCfg == (session.Config{}) {
		sessionCfg = session.DefaultConfig()
	}
	layoutCfg := cfg.LayoutConfig
	if layoutCfg.StrictAttempts == 0 {
		layoutCfg = layout.DefaultConfig()
	}

	hubManager := live.NewHubManager(logger)
	broadcaster := live.NewBroadcaster(hubManager, logger)

	roundsService := rounds.New(store, logger)
	generator := layout.New(rnd, layoutCfg, logger)
	controller := session.NewController(store, generator, roundsService, clk, rnd, broadcaster, sessionCfg, logger)
	resultsService := results.New(controller)
	authService := auth.New(store, clk, authCfg, logger)
	botService := bot.NewService(controller, map[string]bot.Strategy{
		model.BotStrategyRandom:   bot.NewRandomStrategy(rnd),
		model.BotStrategyExplorer: bot.NewExplorerStrategy(),
	}, logger)

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		RoundsService:     roundsService,
		LayoutGenerator:   generator,
		SessionController: controller,
		ResultsService:    resultsService,
		AuthService:       authService,
		BotService:        botService,
		HubManager:        hubManager,
		Broadcaster:       broadcaster,
	}
}
