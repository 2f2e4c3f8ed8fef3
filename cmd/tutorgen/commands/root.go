// Package commands implements the tutorgen CLI commands.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/phrazzld/tutorgen/internal/bootstrap"
	"github.com/phrazzld/tutorgen/internal/config"
	"github.com/phrazzld/tutorgen/internal/platform/logger"
	"github.com/phrazzld/tutorgen/internal/registry"
	"github.com/phrazzld/tutorgen/internal/service"
)

// env holds the resources shared by every command. It is populated by the
// root command's PersistentPreRunE.
type env struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
}

// NewRootCommand returns the tutorgen command tree.
func NewRootCommand() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:   "tutorgen",
		Short: "Generate tutoring content with a language model",
		Long: `tutorgen generates practice questions, hands-on challenges and student
reports with a language model, and manages the registries they are stored in.

Configuration is read from config.yaml (or --config) and TUTORGEN_*
environment variables; a .env file in the working directory is loaded first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return e.load()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if e.closer != nil {
				_ = e.closer.Close()
			}
		},
	}
	root.PersistentFlags().StringVar(&e.configPath, "config", "", "path to a config file")
	root.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "log at the configured level instead of errors only")

	root.AddCommand(
		questionsCmd(e),
		challengesCmd(e),
		reportCmd(e),
		registryCmd(e),
		tokenCmd(e),
		migrateCmd(e),
	)
	return root
}

func (e *env) load() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.LoadFile(e.configPath)
	if err != nil {
		return err
	}
	e.cfg = cfg

	// Command output goes to stdout, so console logs go to stderr.
	if cfg.Log.File != "" {
		e.logger, e.closer, err = bootstrap.Logger(cfg)
		return err
	}
	level := slog.LevelError
	if e.verbose {
		level, _ = logger.ParseLevel(cfg.Server.LogLevel)
	}
	e.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

// toolkit connects to the configured model.
func (e *env) toolkit(ctx context.Context) (service.Toolkit, error) {
	gen, err := bootstrap.Generator(ctx, e.cfg.LLM, e.logger)
	if err != nil {
		return service.Toolkit{}, err
	}
	return bootstrap.Toolkit(e.cfg.Generation, gen, e.logger)
}

func (e *env) registries() *registry.Set {
	return registry.NewSet(e.cfg.Registry.RootDir, e.logger)
}

func (e *env) contents() *service.DirContentSource {
	return service.NewDirContentSource(e.cfg.Registry.ContentsDir)
}

// printJSON writes v as indented JSON to the command's output.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
