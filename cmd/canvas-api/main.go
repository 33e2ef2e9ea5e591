package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/PabloGalante/canvas-agent/internal/bootstrap"
	"github.com/PabloGalante/canvas-agent/internal/config"
	"github.com/PabloGalante/canvas-agent/internal/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		observability.Logger().Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log, closeLog := observability.Setup(cfg.LogLevel, cfg.LogFile)
	defer closeLog()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Serve(ctx); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
