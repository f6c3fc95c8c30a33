package pipeline

import (
	"context"
	"fmt"

	"clusternews/internal/clustering"
	"clusternews/internal/embedding"
	"clusternews/internal/keyphrase"
	"clusternews/internal/naming"
	"clusternews/internal/stopwords"
)

// Builder helps construct a fully configured Pipeline
type Builder struct {
	config    *Config
	source    ItemSource
	embedder  embedding.Embedder
	clusterer Clusterer
	namer     ClusterNamer
}

// NewBuilder creates a new pipeline builder with default settings
func NewBuilder() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig sets the pipeline configuration
func (b *Builder) WithConfig(config *Config) *Builder {
	b.config = config
	return b
}

// WithSource sets the item source used by Load
func (b *Builder) WithSource(source ItemSource) *Builder {
	b.source = source
	return b
}

// WithEmbedder replaces the configured embedding model
func (b *Builder) WithEmbedder(embedder embedding.Embedder) *Builder {
	b.embedder = embedder
	return b
}

// WithClusterer replaces the configured clustering strategy
func (b *Builder) WithClusterer(clusterer Clusterer) *Builder {
	b.clusterer = clusterer
	return b
}

// WithNamer replaces the configured cluster namer
func (b *Builder) WithNamer(namer ClusterNamer) *Builder {
	b.namer = namer
	return b
}

// Build loads the stopword lists and models once and wires the components.
// Resources that cannot be loaded surface here as core.ErrResourceUnavailable.
func (b *Builder) Build(ctx context.Context) (*Pipeline, error) {
	cfg := b.config
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := stopwords.Init(cfg.StopwordsDir); err != nil {
		return nil, fmt.Errorf("load stopwords: %w", err)
	}
	stops, err := stopwords.Build()
	if err != nil {
		return nil, fmt.Errorf("load stopwords: %w", err)
	}

	strategy, err := clustering.ParseStrategy(cfg.Clustering.Strategy)
	if err != nil {
		return nil, err
	}
	needsEmbedder := (b.clusterer == nil && strategy != clustering.StrategyBagOfWords) ||
		(b.namer == nil && cfg.Keyphrase != KeyphraseRake)

	embedder := b.embedder
	if embedder == nil && needsEmbedder {
		if embedder, err = embedding.New(ctx, cfg.Embedding); err != nil {
			return nil, err
		}
	}

	clusterer := b.clusterer
	if clusterer == nil {
		if clusterer, err = clustering.New(cfg.Clustering, embedder, stops); err != nil {
			return nil, err
		}
	}

	namer := b.namer
	if namer == nil {
		policy, err := naming.ParseNoisePolicy(cfg.NoisePolicy)
		if err != nil {
			return nil, err
		}

		var extractor keyphrase.Extractor
		switch cfg.Keyphrase {
		case KeyphraseNeural, "":
			extractor = keyphrase.NewEmbeddingExtractor(embedder, stops)
		case KeyphraseRake:
			extractor = keyphrase.NewRakeExtractor(stops)
		default:
			return nil, fmt.Errorf("unknown keyphrase extractor %q", cfg.Keyphrase)
		}
		namer = naming.NewNamer(stops, extractor, policy)
	}

	return NewPipeline(b.source, clusterer, namer, cfg), nil
}
