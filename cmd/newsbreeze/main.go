package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/deusflow/newsbreeze/internal/app"
	"github.com/deusflow/newsbreeze/internal/config"
	"github.com/deusflow/newsbreeze/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: could not load config: %v", err)
	}

	appLogger := logger.Init(cfg.Debug)

	a, err := app.New(context.Background(), cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize application",
			slog.String("component", "app"),
			slog.Any("error", err),
		)
		os.Exit(1)
	}

	if err := a.Run(); err != nil {
		appLogger.Error("Application stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}
