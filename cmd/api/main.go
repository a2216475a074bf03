package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"meeting-assistant-go/internal/app"
	"meeting-assistant-go/internal/config"
	"meeting-assistant-go/internal/logger"
)

func main() {
	cfg := config.Load() // loads .env

	log := logger.NewWithOptions(cfg.Environment, cfg.LogLevel, os.Stdout)
	log.WithField("service", "meeting-assistant-go").Info("starting service")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to start")
	}
	defer a.Close()

	log.WithField("db_driver", cfg.DBDriver).
		WithField("upload_dir", cfg.UploadDir).
		Info("service ready")

	if err := a.Run(ctx); err != nil {
		log.WithError(err).Error("server stopped")
		a.Close()
		os.Exit(1)
	}
}
