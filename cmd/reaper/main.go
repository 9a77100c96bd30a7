package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"intro-auction/config"
	"intro-auction/internal/app"
	"intro-auction/internal/worker"
	"intro-auction/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer a.Close()

	if a.ReaperLease == nil {
		log.Warn().Msg("no reaper lease; run a single reaper instance")
	}

	reaper := worker.NewReaper(a.ReaperSvc, a.ReaperLease, app.Holder(), worker.ReaperConfig{
		BatchSize:    cfg.Reaper.BatchSize,
		IdleInterval: cfg.Reaper.IdleInterval,
		LeaseTTL:     cfg.Reaper.LeaseTTL,
	}, log)
	reaper.Run(ctx)
}
