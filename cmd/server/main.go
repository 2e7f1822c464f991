package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skillxintell/internal/app"
	"skillxintell/internal/config"
	"skillxintell/internal/pkg/logger"
)

func main() {
	boot := logger.New(logger.Config{})

	cfg, err := config.Load()
	if err != nil {
		boot.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, JSON: cfg.Log.JSON}).With("app", cfg.App.AppName)

	container, err := app.NewContainer(cfg, log)
	if err != nil {
		log.Error("failed to bootstrap app", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Warn("cleanup error", "err", err)
		}
	}()
	bootstrap := app.New(container)

	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		log.Error("invalid HTTP port", "err", err)
		return
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", addr, "env", cfg.App.Environment)
		errCh <- bootstrap.Fiber.Listen(addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server error", "err", err)
		}
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := bootstrap.Fiber.ShutdownWithContext(ctx); err != nil {
			log.Warn("shutdown error", "err", err)
		}
	}
}
