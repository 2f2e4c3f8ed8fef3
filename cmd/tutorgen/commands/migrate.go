package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/phrazzld/tutorgen/internal/platform/postgres"
)

func migrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|version]",
		Short:     "Manage the task archive schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.cfg.Database.URL == "" {
				return errors.New("database.url is not configured")
			}
			db, err := postgres.Open(cmd.Context(), e.cfg.Database.URL)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			return postgres.Migrate(cmd.Context(), db, args[0], e.logger)
		},
	}
}
