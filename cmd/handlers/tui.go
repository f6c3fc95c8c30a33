package handlers

import (
	"github.com/spf13/cobra"

	"clusternews/internal/config"
	"clusternews/internal/tui"
)

// NewBrowseCmd creates the interactive cluster browser command
func NewBrowseCmd() *cobra.Command {
	var (
		opts  clusterOptions
		input string
		limit int
	)

	browseCmd := &cobra.Command{
		Use:     "browse",
		Aliases: []string{"tui"},
		Short:   "Browse the named clusters in a terminal UI",
		Long: `Load and cluster the feed (or a JSON file with --input) and open an
interactive two-pane browser: clusters on the left, the posts of the selected
cluster and a preview of the selected post on the right.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			if limit <= 0 && input == "" {
				limit = cfg.Settings.PostLimit
			}
			result, err := loadResult(cmd.Context(), input, limit, opts)
			if err != nil {
				return err
			}
			return tui.Run(rowsOf(result), currentTheme(), cfg.Summary.MaxLength)
		},
	}

	addClusterFlags(browseCmd, &opts)
	browseCmd.Flags().StringVarP(&input, "input", "i", "", "JSON file holding an array of items instead of the configured source")
	browseCmd.Flags().IntVarP(&limit, "limit", "l", 0, "Number of items to fetch (default settings.post_limit)")

	return browseCmd
}
