package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ent0n29/aanyaa/internal/app"
	"github.com/ent0n29/aanyaa/internal/config"
	"github.com/ent0n29/aanyaa/internal/logutil"
)

func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot and its HTTP endpoints",
		Long:  `Poll Telegram for messages and serve /health, /metrics and the live activity feed until SIGINT or SIGTERM.`,
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	logger, err := logutil.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	built, err := app.Prepare(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// Bind the hosting port before talking to Telegram so platform health
	// checks pass while getMe is slow.
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: built.API.Router(),
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server_listening", "addr", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			stop()
		}
	}()

	runErr := built.Connect(ctx)
	if runErr == nil {
		runErr = built.Run(ctx)
	}
	logger.Info("shutdown_started")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful_shutdown_failed", "error", err)
		_ = httpServer.Close()
	}
	logger.Info("shutdown_complete")

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen error: %w", err)
	default:
	}
	return runErr
}
