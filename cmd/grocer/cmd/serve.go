package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/grocery-autopilot/internal/api/handlers"
	mw "github.com/donaldgifford/grocery-autopilot/internal/api/middleware"
	"github.com/donaldgifford/grocery-autopilot/internal/engine"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the control API server and scheduler",
		RunE:  runServe,
	}
}

func runServe(_ *cobra.Command, _ []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	cfg, log := app.cfg, app.log

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(mw.RequestLog(log))
	e.Use(mw.Recovery(log))
	e.Use(mw.Metrics())

	health := handlers.NewHealthHandler(app.catalog)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)

	// Prometheus metrics.
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("Grocery Autopilot API", Version))
	handlers.RegisterSuggestRoutes(api, handlers.NewSuggestHandler(
		app.catalog, cfg.Resolver.TopN, cfg.Resolver.MinSimilarity,
	))
	handlers.RegisterMappingRoutes(api, handlers.NewMappingHandler(app.catalog))
	handlers.RegisterUnavailableRoutes(api, handlers.NewUnavailableHandler(app.unavail))
	handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(app.limiter))
	handlers.RegisterRunRoutes(api, handlers.NewRunHandler(app.eng))

	var sched *engine.Scheduler
	if cfg.Schedule.Enabled {
		sched, err = engine.NewScheduler(app.eng, cfg.Schedule.Interval, log)
		if err != nil {
			return fmt.Errorf("building scheduler: %w", err)
		}
		sched.Start()
		log.Info("scheduler started", "interval", cfg.Schedule.Interval)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server", "addr", addr)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	if sched != nil {
		<-sched.Stop().Done()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("server stopped")
	return nil
}
