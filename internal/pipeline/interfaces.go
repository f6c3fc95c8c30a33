package pipeline

import (
	"context"

	"clusternews/internal/clustering"
	"clusternews/internal/core"
	"clusternews/internal/feeds"
)

// ItemSource fetches the items of one load cycle
type ItemSource interface {
	// Fetch returns up to limit items plus whether a fallback listing was used
	Fetch(ctx context.Context, limit int) (feeds.Batch, error)
}

// Clusterer assigns a cluster id to every item
type Clusterer interface {
	// Name identifies the strategy in logs and results
	Name() string

	// Cluster sets ClusterID on every item in place and returns the raw labels
	Cluster(ctx context.Context, items []core.Item) (clustering.Result, error)
}

// ClusterNamer derives one label per cluster
type ClusterNamer interface {
	// Name never fails; clusters it cannot name get a positional fallback
	Name(ctx context.Context, assignment core.Assignment) core.Labels
}
