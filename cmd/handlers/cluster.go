package handlers

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"clusternews/internal/core"
	"clusternews/internal/pipeline"
)

// clusterReport is the JSON output of the cluster command
type clusterReport struct {
	RunID     string         `json:"run_id"`
	Strategy  string         `json:"strategy"`
	Clusters  []clusterEntry `json:"clusters"`
	Generated time.Time      `json:"generated_at"`
}

type clusterEntry struct {
	ID    int         `json:"id"`
	Label string      `json:"label"`
	Items []core.Item `json:"items"`
}

// NewClusterCmd creates the cluster command for offline clustering of a dump
func NewClusterCmd() *cobra.Command {
	var (
		opts      clusterOptions
		input     string
		output    string
		showItems bool
		asJSON    bool
	)

	clusterCmd := &cobra.Command{
		Use:   "cluster",
		Short: "Cluster and name the items of a JSON file",
		Long: `Cluster every item of a JSON array of items and print the named clusters.

Examples:
  clusternews cluster --input items.json
  clusternews cluster --input items.json --strategy kmeans -k 4 --json
  clusternews cluster --input items.json --output clusters`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := loadResult(cmd.Context(), input, 0, opts)
			if err != nil {
				return err
			}
			if asJSON {
				return writeReport(cmd, result)
			}
			return printResult(cmd, result, showItems, output)
		},
	}

	addClusterFlags(clusterCmd, &opts)
	clusterCmd.Flags().StringVarP(&input, "input", "i", "", "JSON file holding an array of items")
	clusterCmd.Flags().StringVarP(&output, "output", "o", "", "Also export the clusters as markdown into this directory")
	clusterCmd.Flags().BoolVar(&showItems, "items", false, "List the items of every cluster")
	clusterCmd.Flags().BoolVar(&asJSON, "json", false, "Print the clusters as JSON")
	_ = clusterCmd.MarkFlagRequired("input")

	return clusterCmd
}

func writeReport(cmd *cobra.Command, result *pipeline.Result) error {
	report := clusterReport{
		RunID:     result.RunID,
		Strategy:  result.Strategy,
		Clusters:  []clusterEntry{},
		Generated: time.Now().UTC(),
	}
	for _, row := range rowsOf(result) {
		report.Clusters = append(report.Clusters, clusterEntry{ID: row.ID, Label: row.Label, Items: row.Items})
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode clusters: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
