package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/phrazzld/tutorgen/internal/auth"
	"github.com/phrazzld/tutorgen/internal/bootstrap"
	"github.com/phrazzld/tutorgen/internal/config"
	"github.com/phrazzld/tutorgen/internal/events"
	"github.com/phrazzld/tutorgen/internal/generation"
	"github.com/phrazzld/tutorgen/internal/platform/postgres"
	"github.com/phrazzld/tutorgen/internal/registry"
	"github.com/phrazzld/tutorgen/internal/service"
	"github.com/phrazzld/tutorgen/internal/store"
	"github.com/phrazzld/tutorgen/internal/task"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// archive is nil when no database is configured.
	archive store.TaskArchive
	// tokens is nil when bearer authentication is disabled.
	tokens *auth.Tokens

	queue      *task.Queue
	emitter    *events.InMemoryEmitter
	registries *registry.Set
	contents   service.ContentSource

	questions   *service.QuestionService
	challenges  *service.ChallengeService
	reports     *service.ReportService
	evaluator   *service.EvaluationService
	feedback    *service.FeedbackService
	progression *service.ProgressionService
}

// newApplication connects to the configured model and database and wires
// the services.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	gen, err := bootstrap.Generator(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("LLM generator initialized", "provider", cfg.LLM.Provider, "model", cfg.LLM.ModelName)

	db, err := bootstrap.Database(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	app, err := assemble(cfg, logger, gen, db)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}
	return app, nil
}

// assemble builds the application around an existing generator. db may be
// nil.
func assemble(cfg *config.Config, logger *slog.Logger, gen generation.Generator, db *sql.DB) (*application, error) {
	app := &application{
		config:     cfg,
		logger:     logger,
		db:         db,
		registries: registry.NewSet(cfg.Registry.RootDir, logger),
		contents:   service.NewDirContentSource(cfg.Registry.ContentsDir),
	}

	tk, err := bootstrap.Toolkit(cfg.Generation, gen, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Auth.JWTSecret != "" {
		app.tokens, err = auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenLifetime())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize token service: %w", err)
		}
		logger.Info("bearer authentication enabled",
			"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)
	}

	// The queue dispatches through mux; handlers are registered once the
	// services that need the queue exist.
	mux := task.NewMux()
	var queueOpts []task.Option
	if db != nil {
		archive := postgres.NewTaskArchive(db)
		app.archive = archive
		queueOpts = append(queueOpts, task.WithArchive(archive))
	}
	app.queue, err = task.NewQueue(cfg.Task.QueueSize, mux, logger, queueOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create task queue: %w", err)
	}

	if app.questions, err = service.NewQuestionService(tk, app.registries, logger); err != nil {
		return nil, err
	}
	if app.challenges, err = service.NewChallengeService(tk, app.registries, logger); err != nil {
		return nil, err
	}
	if app.reports, err = service.NewReportService(tk, logger); err != nil {
		return nil, err
	}
	if app.evaluator, err = service.NewEvaluationService(tk, logger); err != nil {
		return nil, err
	}
	if app.feedback, err = service.NewFeedbackService(tk, app.queue, logger); err != nil {
		return nil, err
	}
	app.progression, err = service.NewProgressionService(app.questions, app.contents, cfg.Registry.RootDir, logger)
	if err != nil {
		return nil, err
	}

	mux.Register(service.TaskTypeChallengeFeedback, app.feedback)
	mux.Register(service.TaskTypeProgression, app.progression)

	app.emitter = events.NewInMemoryEmitter(logger)
	app.emitter.Subscribe(events.TypeContentCompleted,
		task.NewEventHandler(app.queue, service.TaskTypeProgression, service.DecodeContentCompleted, logger))

	logger.Info("application initialized successfully")
	return app, nil
}

// Run serves HTTP and processes the queue until ctx is cancelled or one of
// them fails, then releases resources.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.queue.Run(ctx)
	})
	g.Go(func() error {
		return app.queue.Sweep(ctx, app.config.Task.CleanupInterval(), app.config.Task.MaxAge())
	})
	g.Go(func() error {
		if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	app.queue.Close()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
