package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"StrategyScanner/internal/app"
	"StrategyScanner/internal/config"
	"StrategyScanner/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logging.New("error", true)
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logging.New(cfg.Logging.Level, cfg.Logging.Pretty)
	log.Info().Msg("starting strategy scanner")

	application, err := app.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build application")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		log.Error().Err(err).Msg("application stopped")
		os.Exit(1)
	}

	log.Info().Msg("strategy scanner stopped")
}
