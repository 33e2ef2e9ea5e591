package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a Google-grounded search and print the summary with sources",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := app.Search.Search(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), renderMarkdown(res.Content+formatSources(res.Sources)))
		return nil
	},
}
