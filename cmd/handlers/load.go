package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"clusternews/internal/config"
	"clusternews/internal/pipeline"
	"clusternews/internal/render"
)

func addClusterFlags(cmd *cobra.Command, opts *clusterOptions) {
	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "Clustering strategy: auto, hdbscan, kmeans (overrides config)")
	cmd.Flags().IntVarP(&opts.k, "clusters", "k", 0, "Number of clusters for the kmeans strategy (overrides config)")
	cmd.Flags().StringVar(&opts.keyphrase, "keyphrase", "", "Keyphrase extractor: neural, rake (overrides config)")
}

// NewLoadCmd creates the load command
func NewLoadCmd() *cobra.Command {
	var (
		opts      clusterOptions
		limit     int
		showItems bool
		output    string
	)

	loadCmd := &cobra.Command{
		Use:   "load",
		Short: "Fetch the feed, cluster it and print the named clusters",
		Long: `Fetch up to --limit items from the configured source (Reddit front page,
RSS feeds or a JSON file), cluster them and print one line per cluster.

Examples:
  clusternews load
  clusternews load --limit 100 --items
  clusternews load --strategy kmeans -k 8 --output clusters`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				limit = config.Get().Settings.PostLimit
			}
			result, err := loadResult(cmd.Context(), "", limit, opts)
			if err != nil {
				return err
			}
			return printResult(cmd, result, showItems, output)
		},
	}

	addClusterFlags(loadCmd, &opts)
	loadCmd.Flags().IntVarP(&limit, "limit", "l", 0, "Number of items to fetch (default settings.post_limit)")
	loadCmd.Flags().BoolVar(&showItems, "items", false, "List the items of every cluster")
	loadCmd.Flags().StringVarP(&output, "output", "o", "", "Also export the clusters as markdown into this directory")

	return loadCmd
}

func printResult(cmd *cobra.Command, result *pipeline.Result, showItems bool, output string) error {
	out := cmd.OutOrStdout()
	if result.FallbackUsed {
		fmt.Fprintf(out, "Your front page is empty, showing %s instead.\n\n", result.Source)
	}

	rows := rowsOf(result)
	if err := render.Clusters(out, currentTheme(), rows, showItems); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d items, %d clusters (%s)\n", result.Stats.TotalItems, result.Stats.Clusters, result.Strategy)

	if output != "" {
		path, err := render.WriteMarkdownFile(rows, output, config.Get().Summary.MaxLength)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Clusters written to %s\n", path)
	}
	return nil
}
