package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/schoolgate/internal/api"
	"github.com/mcoot/schoolgate/internal/config"
	"github.com/mcoot/schoolgate/internal/dependencies/clock"
	"github.com/mcoot/schoolgate/internal/dependencies/random"
	"github.com/mcoot/schoolgate/internal/model"
	"github.com/mcoot/schoolgate/internal/services/auth"
	"github.com/mcoot/schoolgate/internal/services/gate"
	"github.com/mcoot/schoolgate/internal/services/pass"
	"github.com/mcoot/schoolgate/internal/services/puzzle"
	"github.com/mcoot/schoolgate/internal/services/tiles"
	"github.com/mcoot/schoolgate/internal/storage"
	"github.com/mcoot/schoolgate/internal/storage/memory"
	"github.com/mcoot/schoolgate/internal/storage/postgres"
	redisstorage "github.com/mcoot/schoolgate/internal/storage/redis"
)

const (
	generatedSecretLength   = 48
	generatedSecretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// App contains all wired application components
type App struct {
	Config config.Config
	Logger *slog.Logger

	// Storage
	Store storage.CredentialStore
	// Pinger is nil for the memory store
	Pinger storage.Pinger
	closer io.Closer

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Tiles       tiles.Provider
	Engine      *puzzle.Engine
	Coordinator *auth.Coordinator
	Gate        *gate.Manager
	Passes      *pass.Issuer
}

// New creates a new application with all dependencies wired.
// A nil logger discards output.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := openStore(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	tileProvider := tiles.NewFileProvider(cfg.Tiles.Dirs, cfg.Tiles.Size, logger)

	app, err := newWithDependencies(store, clock.New(), random.New(), tileProvider, cfg, logger)
	if err != nil {
		if c, ok := store.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, err
	}
	if err := app.BootstrapAdmin(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

// BootstrapAdmin provisions the configured admin when its username is free.
// Self-registration cannot create admins, so this is how the first one exists.
func (a *App) BootstrapAdmin(ctx context.Context) error {
	cfg := a.Config.Auth.BootstrapAdmin
	if cfg.Username == "" {
		return nil
	}

	account, err := a.Coordinator.Provision(ctx, auth.Registration{
		Username:        cfg.Username,
		Password:        cfg.Password,
		ConfirmPassword: cfg.Password,
		FullName:        cfg.FullName,
		Role:            model.RoleAdmin,
	})
	if errors.Is(err, model.ErrDuplicateUsername) {
		a.Logger.Debug("bootstrap admin already exists", slog.String("username", cfg.Username))
		return nil
	}
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	a.Logger.Info("bootstrap admin created", slog.String("account_id", string(account.ID)))
	return nil
}

// openStore connects the configured backend
func openStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (storage.CredentialStore, error) {
	switch cfg.Type {
	case "", config.StorageMemory:
		logger.Info("using in-memory account storage")
		return memory.New(), nil
	case config.StorageRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.Redis.URL
		if cfg.Redis.PoolSize > 0 {
			redisCfg.PoolSize = cfg.Redis.PoolSize
		}
		if cfg.Redis.MinIdleConns > 0 {
			redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		}
		store, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, fmt.Errorf("open redis storage: %w", err)
		}
		logger.Info("using redis account storage")
		return store, nil
	case config.StoragePostgres:
		store, err := postgres.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres storage: %w", err)
		}
		logger.Info("using postgres account storage")
		return store, nil
	default:
		return nil, errors.New("invalid storage type: must be 'memory', 'redis' or 'postgres'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.CredentialStore,
	clk clock.Clock,
	rnd random.Random,
	tileProvider tiles.Provider,
	cfg config.Config,
	logger *slog.Logger,
) (*App, error) {
	matcher, err := auth.MatcherFor(cfg.Auth.PasswordScheme)
	if err != nil {
		return nil, err
	}
	if b, ok := matcher.(auth.BcryptMatcher); ok {
		b.Cost = cfg.Auth.BcryptCost
		matcher = b
	}

	secret := cfg.Pass.Secret
	if secret == "" {
		logger.Warn("no pass secret configured, passes will not survive a restart")
		secret = rnd.String(generatedSecretLength, generatedSecretAlphabet)
	}
	passes, err := pass.New(pass.Config{Secret: secret, TTL: cfg.Pass.TTL, Issuer: pass.DefaultConfig().Issuer}, clk)
	if err != nil {
		return nil, err
	}

	engine := puzzle.New(rnd)
	coordinator := auth.New(store, engine, clk, logger, auth.Config{
		MaxFailedAttempts: cfg.Auth.MaxFailedAttempts,
		Matcher:           matcher,
	})
	gateManager := gate.New(coordinator, engine, tileProvider, clk, rnd, logger, gate.Config{
		PuzzleFailureLimit: cfg.Gate.PuzzleFailureLimit,
		WindowTTL:          cfg.Gate.WindowTTL,
	})

	app := &App{
		Config:      cfg,
		Logger:      logger,
		Store:       store,
		Clock:       clk,
		Random:      rnd,
		Tiles:       tileProvider,
		Engine:      engine,
		Coordinator: coordinator,
		Gate:        gateManager,
		Passes:      passes,
	}
	if p, ok := store.(storage.Pinger); ok {
		app.Pinger = p
	}
	if c, ok := store.(io.Closer); ok {
		app.closer = c
	}
	return app, nil
}

// Router builds the API handler for this app
func (a *App) Router() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:      a.Logger,
		Coordinator: a.Coordinator,
		Gate:        a.Gate,
		Passes:      a.Passes,
		Pinger:      a.Pinger,
	})
}

// Close releases the storage backend
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
