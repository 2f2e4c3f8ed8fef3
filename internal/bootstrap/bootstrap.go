// Package bootstrap builds the collaborators shared by the server and the
// command line tool from a loaded configuration.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/phrazzld/tutorgen/internal/config"
	"github.com/phrazzld/tutorgen/internal/extract"
	"github.com/phrazzld/tutorgen/internal/generation"
	"github.com/phrazzld/tutorgen/internal/parse"
	"github.com/phrazzld/tutorgen/internal/platform/gemini"
	"github.com/phrazzld/tutorgen/internal/platform/logger"
	"github.com/phrazzld/tutorgen/internal/platform/ollama"
	"github.com/phrazzld/tutorgen/internal/platform/postgres"
	"github.com/phrazzld/tutorgen/internal/prompts"
	"github.com/phrazzld/tutorgen/internal/service"
	"github.com/phrazzld/tutorgen/internal/validate"
)

// Logger sets up the process logger from cfg.
func Logger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	l, closer, err := logger.Setup(logger.LoggerConfig{
		Level:      cfg.Server.LogLevel,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	return l, closer, nil
}

// Generator creates the language model client named by cfg.Provider.
func Generator(ctx context.Context, cfg config.LLMConfig, log *slog.Logger) (generation.Generator, error) {
	switch cfg.Provider {
	case "gemini":
		g, err := gemini.NewGenerator(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini generator: %w", err)
		}
		return g, nil
	case "ollama":
		g, err := ollama.NewGenerator(cfg, &http.Client{}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama generator: %w", err)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", generation.ErrInvalidConfig, cfg.Provider)
	}
}

// Toolkit wires the generation controller, parser, validator and prompt
// library around gen.
func Toolkit(cfg config.GenerationConfig, gen generation.Generator, log *slog.Logger) (service.Toolkit, error) {
	controller, err := generation.NewController(gen, log,
		generation.WithMaxAttempts(cfg.MaxAttempts),
		generation.WithRetryDelay(cfg.RetryDelay()))
	if err != nil {
		return service.Toolkit{}, fmt.Errorf("failed to create generation controller: %w", err)
	}
	return service.Toolkit{
		Controller: controller,
		Parser:     parse.New(extract.New(log), log),
		Validator:  validate.New(),
		Prompts:    prompts.New(cfg.PromptsDir),
	}, nil
}

// Database opens the task archive database and applies migrations. It
// returns nil when no database is configured.
func Database(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*sql.DB, error) {
	if cfg.URL == "" {
		log.Info("no database configured, finished tasks are kept in memory only")
		return nil, nil
	}

	db, err := postgres.Open(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", postgres.MaskURL(cfg.URL), err)
	}
	if err := postgres.Migrate(ctx, db, "up", log); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info("database connection established", "url", postgres.MaskURL(cfg.URL))
	return db, nil
}
