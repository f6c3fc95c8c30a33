package handlers

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"clusternews/internal/config"
)

const itemsJSON = `[
  {"title": "Championship final goes to penalties", "body": "The football championship final ended in a penalty shootout"},
  {"title": "Election polls open early", "body": "Voters queue as the national election polls open"},
  {"title": "Football club signs striker", "body": "The football club confirmed the striker transfer"},
  {"title": "Election results delayed", "body": "Counting of election ballots is delayed in several districts"},
  {"title": "Football coach sacked", "body": "The club sacked its football coach after the defeat"},
  {"title": "Candidates debate before election", "body": "**Election** candidates met for a [televised debate](https://example.com/debate)"}
]`

func writeItems(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.json")
	if err := os.WriteFile(path, []byte(itemsJSON), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	config.Reset()
	t.Cleanup(config.Reset)

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestClusterCommandJSON(t *testing.T) {
	input := writeItems(t)

	out, err := execute(t, "cluster", "--input", input, "--strategy", "kmeans", "-k", "2", "--keyphrase", "rake", "--json")
	if err != nil {
		t.Fatalf("cluster failed: %v\n%s", err, out)
	}

	var report clusterReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if report.Strategy != "kmeans" {
		t.Errorf("strategy = %q, want kmeans", report.Strategy)
	}
	if len(report.Clusters) != 2 {
		t.Fatalf("got %d clusters, want 2", len(report.Clusters))
	}
	total := 0
	for _, c := range report.Clusters {
		if c.Label == "" {
			t.Errorf("cluster %d has no label", c.ID)
		}
		total += len(c.Items)
	}
	if total != 6 {
		t.Errorf("clusters hold %d items, want 6", total)
	}
}

func TestClusterCommandMarkdown(t *testing.T) {
	input := writeItems(t)
	outDir := t.TempDir()

	out, err := execute(t, "cluster", "--input", input, "--strategy", "kmeans", "-k", "2", "--keyphrase", "rake", "--output", outDir)
	if err != nil {
		t.Fatalf("cluster failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "6 items, 2 clusters (kmeans)") {
		t.Errorf("unexpected summary line:\n%s", out)
	}

	matches, _ := filepath.Glob(filepath.Join(outDir, "clusters_*.md"))
	if len(matches) != 1 {
		t.Fatalf("expected one markdown export, got %v", matches)
	}
}

func TestClusterCommandRequiresInput(t *testing.T) {
	if _, err := execute(t, "cluster"); err == nil {
		t.Fatal("expected an error without --input")
	}
}

func TestSummarizeCommand(t *testing.T) {
	input := writeItems(t)

	out, err := execute(t, "summarize", "--input", input, "--index", "5")
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if !strings.Contains(out, "Candidates debate before election") {
		t.Errorf("detail should contain the title:\n%s", out)
	}
	if !strings.Contains(out, "Election candidates met for a televised debate") {
		t.Errorf("detail should contain the cleaned preview:\n%s", out)
	}

	if _, err := execute(t, "summarize", "--input", input, "--index", "6"); err == nil {
		t.Error("expected an error for an index out of range")
	}
}

func TestPipelineConfigMapping(t *testing.T) {
	cfg := &config.Config{
		Settings:   config.Settings{PostLimit: 20},
		Clustering: config.Clustering{Strategy: "kmeans", MinClusterSize: 4, Metric: "cosine", K: 7, Seed: 1, MaxNoiseRatio: 0.5},
		Naming:     config.Naming{Keyphrase: "rake", NoisePolicy: "omit"},
		Embedding:  config.Embedding{Provider: "hashing", Dimensions: 64, Timeout: "5s"},
	}

	pc := pipelineConfig(cfg)
	if pc.PostLimit != 20 || pc.Clustering.K != 7 || pc.Clustering.Metric != "cosine" || pc.Clustering.MaxNoiseRatio != 0.5 {
		t.Errorf("clustering settings not mapped: %+v", pc)
	}
	if pc.Keyphrase != "rake" || pc.NoisePolicy != "omit" {
		t.Errorf("naming settings not mapped: %+v", pc)
	}
	if pc.Embedding.Provider != "hashing" || pc.Embedding.Dimensions != 64 || pc.Embedding.Timeout.Seconds() != 5 {
		t.Errorf("embedding settings not mapped: %+v", pc.Embedding)
	}

	clusterOptions{strategy: "hdbscan", k: 3, keyphrase: "neural"}.apply(pc)
	if pc.Clustering.Strategy != "hdbscan" || pc.Clustering.K != 3 || pc.Keyphrase != "neural" {
		t.Errorf("overrides not applied: %+v", pc)
	}
}
