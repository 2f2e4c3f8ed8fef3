package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/phrazzld/tutorgen/internal/registry"
	"github.com/phrazzld/tutorgen/internal/service"
)

func registryCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect generated-content registries",
	}
	cmd.AddCommand(registryListCmd(e))
	return cmd
}

func registryListCmd(e *env) *cobra.Command {
	var (
		collection string
		contents   []string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the items generated for a content combination",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if collection != service.QuestionsCollection && collection != service.ChallengesCollection {
				return fmt.Errorf("unknown collection %q, want %s or %s",
					collection, service.QuestionsCollection, service.ChallengesCollection)
			}
			reg, err := e.registries().Open(collection, []string{registry.ComboKey(contents)})
			if err != nil {
				return err
			}
			entries, err := reg.List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				if entries == nil {
					entries = []registry.Entry{}
				}
				return printJSON(cmd, entries)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SEQ\tUUID\tTYPE\tDIFFICULTY\tGENERATED\tTITLE")
			for _, en := range entries {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
					en.Sequence, en.UUID, en.Type, en.Difficulty,
					en.GeneratedAt.Format(time.RFC3339), en.Title)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&collection, "collection", service.QuestionsCollection, "questions or challenges")
	cmd.Flags().StringSliceVar(&contents, "contents", nil, "source content ids")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	_ = cmd.MarkFlagRequired("contents")
	return cmd
}
