package clustering

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"clusternews/internal/core"
	"clusternews/internal/embedding"
	"clusternews/internal/logger"
	"clusternews/internal/stopwords"
)

// Config selects and parameterizes the clustering strategy.
type Config struct {
	Strategy       string  // auto, hdbscan or kmeans
	MinClusterSize int     // density strategy
	Metric         string  // density strategy: euclidean, cosine or manhattan
	K              int     // bag-of-words strategy
	Seed           int64   // bag-of-words strategy
	MaxNoiseRatio  float64 // auto: fall back when the density result is noisier than this
}

// New builds the configured strategy. "auto" chains the density strategy with
// bag-of-words as a fallback.
func New(cfg Config, embedder embedding.Embedder, stops stopwords.Set) (Strategy, error) {
	name, err := ParseStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	if _, err := Metric(cfg.Metric); err != nil {
		return nil, err
	}

	minSize := cfg.MinClusterSize
	if minSize <= 0 {
		minSize = DefaultMinClusterSize
	}
	kmCfg := DefaultKMeansConfig()
	if cfg.Seed != 0 {
		kmCfg.Seed = cfg.Seed
	}

	density := &DensityStrategy{Embedder: embedder, MinClusterSize: minSize, Metric: cfg.Metric}
	bow := &BagOfWordsStrategy{K: cfg.K, Stopwords: stops, Config: kmCfg}

	switch name {
	case StrategyDensity:
		return density, nil
	case StrategyBagOfWords:
		return bow, nil
	default:
		bow.ClampK = true
		ratio := cfg.MaxNoiseRatio
		if ratio <= 0 {
			ratio = 1
		}
		return &FallbackStrategy{Primary: density, Secondary: bow, MaxNoiseRatio: ratio}, nil
	}
}

// FallbackStrategy runs Primary and switches to Secondary when Primary fails
// or leaves more than MaxNoiseRatio of the items as noise.
type FallbackStrategy struct {
	Primary       Strategy
	Secondary     Strategy
	MaxNoiseRatio float64
}

// Name implements Strategy.
func (f *FallbackStrategy) Name() string { return StrategyAuto }

// Cluster implements Strategy. The returned Result names the strategy that
// produced the labels.
func (f *FallbackStrategy) Cluster(ctx context.Context, items []core.Item) (Result, error) {
	log := logger.Get().With("component", "clustering", "strategy", f.Name())

	res, err := f.Primary.Cluster(ctx, items)
	switch {
	case err != nil:
		log.Warn("primary strategy failed", "primary", f.Primary.Name(), "error", err)
	case res.NoiseRatio() > f.MaxNoiseRatio:
		log.Warn("primary strategy left too much noise",
			"primary", f.Primary.Name(), "noise_ratio", res.NoiseRatio(), "max", f.MaxNoiseRatio)
	default:
		return res, nil
	}

	if f.Secondary == nil {
		return res, err
	}
	return f.fallback(ctx, log, items, res, err)
}

func (f *FallbackStrategy) fallback(ctx context.Context, log *slog.Logger, items []core.Item, primary Result, primaryErr error) (Result, error) {
	res, err := f.Secondary.Cluster(ctx, items)
	if err == nil {
		log.Info("used fallback strategy", "secondary", f.Secondary.Name())
		return res, nil
	}

	if primaryErr != nil {
		return Result{}, fmt.Errorf("all clustering strategies failed: %w", errors.Join(primaryErr, err))
	}

	// Keep the noisy primary result; restore its labels on the items.
	log.Warn("fallback strategy failed, keeping primary result", "secondary", f.Secondary.Name(), "error", err)
	apply(items, primary.Labels)
	return primary, nil
}
