// Package render formats named clusters and item details for the terminal and
// for markdown export.
package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"clusternews/internal/core"
	"clusternews/internal/summarize"
)

// ClusterRow is one labeled cluster with its members in input order.
type ClusterRow struct {
	ID    int
	Label string
	Items []core.Item
}

// String returns the list line of the cluster, e.g. "Election (3 posts)".
func (r ClusterRow) String() string {
	return fmt.Sprintf("%s (%d posts)", r.Label, len(r.Items))
}

// Rows pairs every labeled cluster with its items, sorted by cluster id with
// the noise cluster last. Clusters without a label are left out.
func Rows(assignment core.Assignment, labels core.Labels) []ClusterRow {
	rows := make([]ClusterRow, 0, len(labels))
	for id, label := range labels {
		items, ok := assignment[id]
		if !ok {
			continue
		}
		rows = append(rows, ClusterRow{ID: id, Label: label, Items: items})
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].ID, rows[j].ID
		if (a == core.NoiseClusterID) != (b == core.NoiseClusterID) {
			return b == core.NoiseClusterID
		}
		return a < b
	})
	return rows
}

// Clusters writes one line per cluster, followed by its item titles when
// withItems is set.
func Clusters(w io.Writer, theme Theme, rows []ClusterRow, withItems bool) error {
	st := theme.Styles()

	var b strings.Builder
	if len(rows) == 0 {
		b.WriteString(st.Muted.Render("No clusters."))
		b.WriteString("\n")
	}
	for _, row := range rows {
		b.WriteString(st.Label.Render(row.Label))
		b.WriteString(" ")
		b.WriteString(st.Muted.Render(fmt.Sprintf("(%d posts)", len(row.Items))))
		b.WriteString("\n")
		if !withItems {
			continue
		}
		for i, item := range row.Items {
			b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, st.Body.Render(displayTitle(item))))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// DetailString renders the detail view of an item: title, links, date and a
// preview of at most maxLength characters.
func DetailString(theme Theme, item core.Item, maxLength int) string {
	st := theme.Styles()

	var lines []string
	lines = append(lines, st.Heading.Render(displayTitle(item)))
	if !item.CreatedAt.IsZero() {
		lines = append(lines, st.Muted.Render(item.CreatedAt.Local().Format("2006-01-02 15:04")))
	}
	lines = append(lines, "")
	if summary := summarize.Summarize(item, maxLength); summary != "" {
		lines = append(lines, st.Body.Render(summary), "")
	}
	if item.URL != "" {
		lines = append(lines, "Link: "+st.Link.Render(item.URL))
	}
	if item.Permalink != "" && item.Permalink != item.URL {
		lines = append(lines, "Discussion: "+st.Link.Render(item.Permalink))
	}
	if item.HasThumbnail() {
		lines = append(lines, "Thumbnail: "+st.Muted.Render(item.Thumbnail))
	}
	return strings.Join(lines, "\n")
}

// Detail writes the detail view of an item.
func Detail(w io.Writer, theme Theme, item core.Item, maxLength int) error {
	_, err := io.WriteString(w, DetailString(theme, item, maxLength)+"\n")
	return err
}

// Markdown writes the clusters as a markdown document with one section per
// cluster and one bullet per item.
func Markdown(w io.Writer, rows []ClusterRow, maxLength int) error {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# News Clusters - %s\n\n", time.Now().UTC().Format("2006-01-02")))

	if len(rows) == 0 {
		b.WriteString("No clusters.\n")
	}
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("## %s\n\n", row))
		for _, item := range row.Items {
			title := displayTitle(item)
			if item.URL != "" {
				title = fmt.Sprintf("[%s](%s)", title, item.URL)
			}
			b.WriteString("- " + title + "\n")
			if summary := summarize.Summarize(item, maxLength); summary != "" && summary != item.Title {
				b.WriteString("  " + strings.ReplaceAll(summary, "\n", " ") + "\n")
			}
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteMarkdownFile writes the markdown export to outputDir and returns the
// file path.
func WriteMarkdownFile(rows []ClusterRow, outputDir string, maxLength int) (string, error) {
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	filePath := filepath.Join(outputDir, fmt.Sprintf("clusters_%s.md", time.Now().UTC().Format("2006-01-02")))
	f, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filePath, err)
	}
	defer func() { _ = f.Close() }()

	if err := Markdown(f, rows, maxLength); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filePath, err)
	}
	return filePath, nil
}

func displayTitle(item core.Item) string {
	if item.Title == "" {
		return "(untitled)"
	}
	return item.Title
}
