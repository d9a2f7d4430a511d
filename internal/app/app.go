package app

import (
	"hubspot-connector/internal/common/logging"
	"hubspot-connector/internal/common/ratelimit"
	"hubspot-connector/internal/config"
	"hubspot-connector/internal/credentials"
	"hubspot-connector/internal/hubspot"
	"hubspot-connector/internal/locks"
	"hubspot-connector/internal/redis"
)

// App holds all the application dependencies
type App struct {
	Config      *config.Config
	RedisClient *redis.Client
	Store       credentials.Store
	Locks       *locks.RedsyncManager
	HubSpot     *hubspot.Manager
	RateLimiter *ratelimit.LocalLimiter
	Logger      logging.Logger
}

// New creates a new application instance with all dependencies
func New(cfg *config.Config) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logging.GetGlobalLogger().WithFields(logging.Field{Key: "component", Value: "app"}),
	}

	if err := app.initializeRedis(); err != nil {
		return nil, err
	}

	if err := app.initializeStore(); err != nil {
		app.Cleanup()
		return nil, err
	}

	if err := app.initializeLocks(); err != nil {
		app.Cleanup()
		return nil, err
	}

	if err := app.initializeHubSpot(); err != nil {
		app.Cleanup()
		return nil, err
	}

	if err := app.initializeRateLimiter(); err != nil {
		app.Cleanup()
		return nil, err
	}

	return app, nil
}

func (app *App) initializeLocks() error {
	lockManager, err := locks.NewRedsyncManager(app.RedisClient)
	if err != nil {
		return err
	}
	app.Locks = lockManager
	app.Logger.Info("Distributed Locks: Enabled")
	return nil
}

func (app *App) initializeHubSpot() error {
	manager, err := hubspot.NewManager(
		hubspot.ConfigFromApp(app.Config),
		app.Store,
		hubspot.WithLogger(app.Logger),
		hubspot.WithRefreshLock(app.Locks),
	)
	if err != nil {
		return err
	}

	app.HubSpot = manager
	app.Logger.Info("HubSpot: Configured",
		logging.Field{Key: "redirect_uri", Value: app.Config.HubSpotRedirectURI},
		logging.Field{Key: "scopes", Value: app.Config.HubSpotScopes},
	)
	return nil
}

func (app *App) initializeRateLimiter() error {
	limiter, err := ratelimit.NewLocalLimiter(app.rateLimitConfig())
	if err != nil {
		return err
	}
	app.RateLimiter = limiter

	if limiter.Enabled() {
		app.Logger.Info("Rate Limiting: Enabled",
			logging.Field{Key: "requests_per_second", Value: app.Config.RateLimitRPS},
			logging.Field{Key: "burst", Value: app.Config.RateLimitBurst},
		)
	} else {
		app.Logger.Info("Rate Limiting: Disabled")
	}
	return nil
}

func (app *App) rateLimitConfig() ratelimit.Config {
	cfg := ratelimit.DefaultConfig()
	cfg.Enabled = app.Config.RateLimitRPS > 0
	cfg.RequestsPerSecond = app.Config.RateLimitRPS
	cfg.BurstSize = app.Config.RateLimitBurst
	return cfg
}

// Cleanup releases all resources
func (app *App) Cleanup() {
	if app.RedisClient != nil {
		if err := app.RedisClient.Close(); err != nil {
			app.Logger.Warn("Error closing Redis client", logging.Field{Key: "error", Value: err.Error()})
		}
	}
}
