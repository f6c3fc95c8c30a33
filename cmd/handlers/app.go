package handlers

import (
	"context"
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"

	"clusternews/internal/config"
	"clusternews/internal/core"
	"clusternews/internal/embedding"
	"clusternews/internal/feeds"
	"clusternews/internal/pipeline"
	"clusternews/internal/render"
)

// pipelineConfig maps the application configuration onto the pipeline.
func pipelineConfig(cfg *config.Config) *pipeline.Config {
	pc := pipeline.DefaultConfig()
	pc.PostLimit = cfg.Settings.PostLimit
	pc.Clustering.Strategy = cfg.Clustering.Strategy
	pc.Clustering.MinClusterSize = cfg.Clustering.MinClusterSize
	pc.Clustering.Metric = cfg.Clustering.Metric
	pc.Clustering.K = cfg.Clustering.K
	pc.Clustering.Seed = cfg.Clustering.Seed
	pc.Clustering.MaxNoiseRatio = cfg.Clustering.MaxNoiseRatio
	pc.Keyphrase = cfg.Naming.Keyphrase
	pc.NoisePolicy = cfg.Naming.NoisePolicy
	pc.StopwordsDir = cfg.Stopwords.Dir
	pc.Embedding = embedding.Config{
		Provider:   cfg.Embedding.Provider,
		Model:      cfg.Embedding.Model,
		Endpoint:   cfg.Embedding.Endpoint,
		APIKey:     cfg.Embedding.APIKey,
		Dimensions: cfg.Embedding.Dimensions,
		CacheSize:  cfg.Embedding.CacheSize,
		Timeout:    config.Duration(cfg.Embedding.Timeout, 30*time.Second),
	}
	return pc
}

// newSource builds the configured item source.
func newSource(ctx context.Context, cfg *config.Config) (feeds.Source, error) {
	switch cfg.Feeds.Source {
	case config.SourceReddit, "":
		return feeds.NewRedditSource(ctx, feeds.RedditConfig{
			ClientID:     cfg.Reddit.ClientID,
			ClientSecret: cfg.Reddit.ClientSecret,
			RefreshToken: cfg.Reddit.RefreshToken,
			Username:     cfg.Reddit.Username,
			UserAgent:    cfg.Reddit.UserAgent,
			Timeout:      config.Duration(cfg.Reddit.Timeout, 30*time.Second),
		}), nil
	case config.SourceRSS:
		return feeds.NewRSSSource(cfg.Feeds.RSS, cfg.Feeds.UserAgent, config.Duration(cfg.Feeds.Timeout, 30*time.Second)), nil
	case config.SourceFile:
		return feeds.FileSource{Path: cfg.Feeds.File}, nil
	default:
		return nil, fmt.Errorf("unknown feed source %q", cfg.Feeds.Source)
	}
}

// clusterOptions are the per-command overrides of the clustering settings.
type clusterOptions struct {
	strategy  string
	k         int
	keyphrase string
}

func (o clusterOptions) apply(pc *pipeline.Config) {
	if o.strategy != "" {
		pc.Clustering.Strategy = o.strategy
	}
	if o.k > 0 {
		pc.Clustering.K = o.k
	}
	if o.keyphrase != "" {
		pc.Keyphrase = o.keyphrase
	}
}

// buildPipeline wires the configured pipeline. source may be nil for
// commands that only cluster items they already hold.
func buildPipeline(ctx context.Context, source feeds.Source, opts clusterOptions) (*pipeline.Pipeline, error) {
	pc := pipelineConfig(config.Get())
	opts.apply(pc)

	builder := pipeline.NewBuilder().WithConfig(pc)
	if source != nil {
		builder = builder.WithSource(source)
	}
	p, err := builder.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize pipeline: %w", err)
	}
	return p, nil
}

// loadResult fetches from the configured source, or clusters every item of a
// JSON dump when input is set.
func loadResult(ctx context.Context, input string, limit int, opts clusterOptions) (*pipeline.Result, error) {
	if input != "" {
		items, err := readItems(input)
		if err != nil {
			return nil, err
		}
		if limit > 0 && len(items) > limit {
			items = items[:limit]
		}
		p, err := buildPipeline(ctx, nil, opts)
		if err != nil {
			return nil, err
		}
		return p.Run(ctx, items)
	}

	source, err := newSource(ctx, config.Get())
	if err != nil {
		return nil, err
	}
	p, err := buildPipeline(ctx, source, opts)
	if err != nil {
		return nil, err
	}
	return p.Load(ctx, limit)
}

// readItems reads a JSON array of items.
func readItems(path string) ([]core.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var items []core.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for i := range items {
		items[i] = feeds.ShapeItem(items[i])
	}
	return items, nil
}

func currentTheme() render.Theme {
	return render.ThemeByName(config.Get().Settings.Theme)
}

func rowsOf(result *pipeline.Result) []render.ClusterRow {
	return render.Rows(result.Assignment, result.Labels)
}
