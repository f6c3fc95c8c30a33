package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"clusternews/internal/config"
	"clusternews/internal/render"
)

// NewSummarizeCmd creates the summarize command for a single item preview
func NewSummarizeCmd() *cobra.Command {
	var (
		input     string
		index     int
		maxLength int
	)

	summarizeCmd := &cobra.Command{
		Use:   "summarize",
		Short: "Show the detail view and preview of one item",
		Long: `Show the title, links and a cleaned, length-bounded preview of the
item at --index (0-based) of a JSON array of items.

Examples:
  clusternews summarize --input items.json --index 3
  clusternews summarize --input items.json --index 0 --max-length 80`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := readItems(input)
			if err != nil {
				return err
			}
			if index < 0 || index >= len(items) {
				return fmt.Errorf("index %d out of range: %s holds %d items", index, input, len(items))
			}
			if maxLength <= 0 {
				maxLength = config.Get().Summary.MaxLength
			}
			return render.Detail(cmd.OutOrStdout(), currentTheme(), items[index], maxLength)
		},
	}

	summarizeCmd.Flags().StringVarP(&input, "input", "i", "", "JSON file holding an array of items")
	summarizeCmd.Flags().IntVarP(&index, "index", "n", 0, "Index of the item to summarize")
	summarizeCmd.Flags().IntVar(&maxLength, "max-length", 0, "Maximum preview length in characters (default summary.max_length)")
	_ = summarizeCmd.MarkFlagRequired("input")

	return summarizeCmd
}
