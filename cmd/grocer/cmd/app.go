package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/donaldgifford/grocery-autopilot/internal/cart"
	"github.com/donaldgifford/grocery-autopilot/internal/catalog"
	"github.com/donaldgifford/grocery-autopilot/internal/config"
	"github.com/donaldgifford/grocery-autopilot/internal/engine"
	"github.com/donaldgifford/grocery-autopilot/internal/gtasks"
	"github.com/donaldgifford/grocery-autopilot/internal/hyvee"
	"github.com/donaldgifford/grocery-autopilot/internal/notify"
	"github.com/donaldgifford/grocery-autopilot/internal/unavailable"
	"github.com/donaldgifford/grocery-autopilot/pkg/logger"
)

// app bundles the wired components every command works against.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	catalog *catalog.Store
	unavail *unavailable.Log
	limiter *gtasks.RateLimiter
	tasks   *gtasks.Client
	eng     *engine.Engine
}

// buildApp loads configuration and wires the full pipeline. Commands
// that never touch the browser still get a working engine; the driver
// is only started when a run actually opens the store.
func buildApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	cat := catalog.NewStore(cfg.Paths.Catalog, catalog.WithLogger(log))
	unavail := unavailable.NewLog(cfg.Paths.UnavailableLog)

	limiter := gtasks.NewRateLimiter(
		cfg.Tasks.RateLimit.PerSecond,
		cfg.Tasks.RateLimit.Burst,
		cfg.Tasks.RateLimit.DailyLimit,
	)
	tokens := gtasks.NewFileTokenProvider(cfg.Paths.TokenFile)
	tasks := gtasks.NewClient(tokens, gtasks.WithRateLimiter(limiter))

	var notifier notify.Notifier = notify.NewNoOpNotifier(log)
	if cfg.Notifications.Discord.Enabled {
		notifier = notify.NewDiscordNotifier(cfg.Notifications.Discord.WebhookURL)
	}

	eng := engine.New(
		cfg, cat, tasks, storeOpener(cfg, log), notifier, unavail,
		engine.WithLogger(log),
	)

	return &app{
		cfg:     cfg,
		log:     log,
		catalog: cat,
		unavail: unavail,
		limiter: limiter,
		tasks:   tasks,
		eng:     eng,
	}, nil
}

// loadConfig reads the resolved config file, falling back to built-in
// defaults when no file exists and none was asked for explicitly.
func loadConfig() (*config.Config, error) {
	path := configPath()
	if _, err := os.Stat(path); os.IsNotExist(err) && cfgFile == "" {
		return config.Default(), nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// storeOpener starts a browser session per run and hands the engine a
// close func tied to that session.
func storeOpener(cfg *config.Config, log *slog.Logger) engine.StoreOpener {
	return func(ctx context.Context) (cart.Capability, func() error, error) {
		drv := hyvee.NewDriver(hyvee.Config{
			Bin:         cfg.Browser.Bin,
			Headless:    cfg.Browser.Headless,
			NavTimeout:  cfg.Browser.NavTimeout,
			StepDelay:   cfg.Browser.StepDelay,
			LoginSettle: cfg.Browser.LoginSettle,
			ResultLimit: cfg.Browser.ResultLimit,
			UserAgent:   cfg.Browser.UserAgent,
		}, hyvee.WithLogger(log))

		if err := drv.Start(ctx); err != nil {
			return nil, nil, err
		}
		return drv, drv.Close, nil
	}
}
