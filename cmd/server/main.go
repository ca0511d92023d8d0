package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"herbtrace-backend/internal/config"
	"herbtrace-backend/internal/database"
	"herbtrace-backend/internal/logging"
	"herbtrace-backend/internal/server"
)

func main() {
	logging.Init(slog.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogLevel)

	db, err := database.Open(cfg)
	if err != nil {
		slog.Error("database unavailable", "err", err)
		os.Exit(1)
	}

	app, err := server.New(cfg, db)
	if err != nil {
		slog.Error("could not build server", "err", err)
		os.Exit(1)
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			slog.Error("shutdown failed", "err", err)
		}
	}()

	slog.Info("server listening", "port", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
