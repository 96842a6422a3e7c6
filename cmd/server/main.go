package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/flight-concierge/internal/api"
	"github.com/bobby-s-dev/flight-concierge/internal/config"
	"github.com/bobby-s-dev/flight-concierge/internal/logging"
	"github.com/bobby-s-dev/flight-concierge/internal/scheduler"
	"github.com/bobby-s-dev/flight-concierge/internal/services"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "flight-server",
		Short:         "Flight fulfillment server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfgPath)
		},
	}
	root.Flags().StringVar(&cfgPath, "config", "", "config file path")
	return root
}

func run(cfgPath string) error {
	// Initialize logger
	logger, level, err := logging.New("info")
	if err != nil {
		return err
	}
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	logger.Info("Starting Flight Fulfillment Server")

	// Load configuration
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logging.SetLevel(level, cfg.Server.LogLevel)

	fulfiller := services.NewFulfiller(cfg, logger)

	// Initialize scheduler
	cacheScheduler := scheduler.NewScheduler(
		fulfiller.Cache(),
		fulfiller,
		scheduler.Options{
			SweepSchedule: cfg.Cache.SweepSchedule,
			WarmSchedule:  cfg.Scheduler.WarmSchedule,
			WarmAirports:  cfg.Scheduler.WarmAirports,
		},
		logger,
	)

	// Setup handlers and routes
	handler := api.NewHandler(fulfiller, cacheScheduler, logger)
	app := api.NewApp(handler, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)

	// Start scheduler
	if err := cacheScheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	// Start server in goroutine
	serveErr := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("Starting server", zap.String("address", addr))
		serveErr <- app.Listen(addr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		cacheScheduler.Stop()
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop scheduler
	cacheScheduler.Stop()

	// Shutdown Fiber app
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
	return nil
}
