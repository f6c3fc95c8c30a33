// Package pipeline runs one load cycle: fetch items, cluster them and name
// the clusters.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"clusternews/internal/clustering"
	"clusternews/internal/core"
	"clusternews/internal/embedding"
	"clusternews/internal/logger"
)

// Pipeline orchestrates fetching, clustering and naming
type Pipeline struct {
	source    ItemSource
	clusterer Clusterer
	namer     ClusterNamer
	config    *Config
	log       *slog.Logger
}

// Config holds pipeline configuration
type Config struct {
	// Fetch settings
	PostLimit int

	// Clustering settings
	Clustering clustering.Config

	// Naming settings
	Keyphrase   string // "neural" (embedding-ranked) or "rake"
	NoisePolicy string // "sentinel" or "omit"

	// Model settings
	Embedding    embedding.Config
	StopwordsDir string // empty selects the embedded lists
}

// DefaultConfig returns the defaults used when nothing is configured
func DefaultConfig() *Config {
	return &Config{
		PostLimit: 50,
		Clustering: clustering.Config{
			Strategy:       clustering.StrategyAuto,
			MinClusterSize: clustering.DefaultMinClusterSize,
			Metric:         clustering.MetricEuclidean,
			K:              5,
			Seed:           42,
			MaxNoiseRatio:  1,
		},
		Keyphrase:   KeyphraseNeural,
		NoisePolicy: "sentinel",
		Embedding: embedding.Config{
			Provider:  embedding.ProviderGemini,
			CacheSize: 4096,
		},
	}
}

// Keyphrase extractor names
const (
	KeyphraseNeural = "neural"
	KeyphraseRake   = "rake"
)

// NewPipeline creates a pipeline from its components. source may be nil when
// only Run is used.
func NewPipeline(source ItemSource, clusterer Clusterer, namer ClusterNamer, config *Config) *Pipeline {
	if config == nil {
		config = DefaultConfig()
	}
	return &Pipeline{
		source:    source,
		clusterer: clusterer,
		namer:     namer,
		config:    config,
		log:       logger.Get().With("component", "pipeline"),
	}
}

// Result is the outcome of one load cycle. It is built fresh on every run.
type Result struct {
	RunID        string
	Items        []core.Item
	Assignment   core.Assignment
	Labels       core.Labels
	Strategy     string // strategy that produced the labels
	Source       string // listing the items came from
	FallbackUsed bool   // the source served a fallback listing
	Stats        ProcessingStats
}

// ProcessingStats tracks pipeline execution metrics
type ProcessingStats struct {
	TotalItems     int
	Clusters       int
	NoiseItems     int
	ProcessingTime time.Duration
	StartTime      time.Time
	EndTime        time.Time
}

// Load fetches up to limit items (the configured post limit when limit <= 0)
// and clusters and names them.
func (p *Pipeline) Load(ctx context.Context, limit int) (*Result, error) {
	if p.source == nil {
		return nil, errors.New("no item source configured")
	}
	if limit <= 0 {
		limit = p.config.PostLimit
	}

	batch, err := p.source.Fetch(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch items: %w", err)
	}
	if batch.FallbackUsed {
		p.log.Warn("personal feed was empty, showing fallback listing", "source", batch.Source)
	}

	result, err := p.Run(ctx, batch.Items)
	if err != nil {
		return nil, err
	}
	result.Source = batch.Source
	result.FallbackUsed = batch.FallbackUsed
	return result, nil
}

// Run clusters and names the given items. Items are updated in place.
func (p *Pipeline) Run(ctx context.Context, items []core.Item) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID:      uuid.NewString(),
		Items:      items,
		Assignment: core.Assignment{},
		Labels:     core.Labels{},
		Strategy:   p.clusterer.Name(),
	}
	log := p.log.With("run_id", result.RunID)

	if len(items) == 0 {
		log.Warn("no items to cluster")
		result.Stats = stats(result, start)
		return result, nil
	}

	log.Info("clustering items", "items", len(items), "strategy", p.clusterer.Name())
	res, err := p.clusterer.Cluster(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("cluster items: %w", err)
	}
	result.Items = res.Items
	result.Strategy = res.Strategy

	result.Assignment = core.GroupByCluster(res.Items)
	result.Labels = p.namer.Name(ctx, result.Assignment)

	result.Stats = stats(result, start)
	log.Info("load cycle complete",
		"clusters", result.Stats.Clusters,
		"noise", result.Stats.NoiseItems,
		"duration", result.Stats.ProcessingTime)
	return result, nil
}

func stats(r *Result, start time.Time) ProcessingStats {
	end := time.Now()
	s := ProcessingStats{
		TotalItems:     len(r.Items),
		NoiseItems:     len(r.Assignment[core.NoiseClusterID]),
		StartTime:      start,
		EndTime:        end,
		ProcessingTime: end.Sub(start),
	}
	for id := range r.Assignment {
		if id != core.NoiseClusterID {
			s.Clusters++
		}
	}
	return s
}
