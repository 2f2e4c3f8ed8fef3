// Package main implements the tutorgen HTTP server, which generates
// questions, challenges and reports with a language model and reviews
// challenge submissions on a background queue.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/phrazzld/tutorgen/internal/bootstrap"
	"github.com/phrazzld/tutorgen/internal/config"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("tutorgen server: %v", err)
	}
}

func run() error {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, closer, err := bootstrap.Logger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	logger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"llm_provider", cfg.LLM.Provider,
		"auth_enabled", cfg.Auth.JWTSecret != "",
		"database_enabled", cfg.Database.URL != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
