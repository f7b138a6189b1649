package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/club-checkout/internal/app/provisioning"
	"github.com/magabrotheeeer/club-checkout/internal/config"
	"github.com/magabrotheeeer/club-checkout/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.SetupLogger(cfg.Env)

	logger.Info("starting provisioning-worker", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := provisioning.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize provisioning worker", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("provisioning worker stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("provisioning worker stopped gracefully")
}
