package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sri-narendra/Tasks/internal/app"
	"github.com/sri-narendra/Tasks/internal/config"
	"github.com/sri-narendra/Tasks/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger config may itself be broken, so report on stderr directly.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New("taskboard-api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.Close(context.Background())

	if err := a.Run(ctx); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
