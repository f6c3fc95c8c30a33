package clustering

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gonum.org/v1/gonum/floats"

	"clusternews/internal/core"
	"clusternews/internal/embedding"
	"clusternews/internal/logger"
)

// Distance metrics understood by the density strategy.
const (
	MetricEuclidean = "euclidean"
	MetricCosine    = "cosine"
	MetricManhattan = "manhattan"
)

// DefaultMinClusterSize is the smallest group the density strategy reports.
const DefaultMinClusterSize = 3

// DistanceFunc measures the distance between two embeddings.
type DistanceFunc = func(a, b []float64) float64

// Metric resolves a metric name. An empty name selects euclidean.
func Metric(name string) (DistanceFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", MetricEuclidean:
		return euclideanDistance, nil
	case MetricCosine:
		return cosineDistance, nil
	case MetricManhattan:
		return manhattanDistance, nil
	default:
		return nil, fmt.Errorf("unknown distance metric %q", name)
	}
}

func euclideanDistance(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

func manhattanDistance(a, b []float64) float64 {
	return floats.Distance(a, b, 1)
}

// cosineDistance is 1 - cosine similarity, in [0, 2]. Zero vectors are at
// distance 1 from everything.
func cosineDistance(a, b []float64) float64 {
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 1
	}
	sim := floats.Dot(a, b) / (na * nb)
	if sim > 1 {
		sim = 1
	} else if sim < -1 {
		sim = -1
	}
	return 1 - sim
}

// DensityStrategy clusters items by HDBSCAN over their sentence embeddings.
// Items in no dense region are labeled core.NoiseClusterID.
type DensityStrategy struct {
	Embedder       embedding.Embedder
	MinClusterSize int
	Metric         string
}

// Name implements Strategy.
func (d *DensityStrategy) Name() string { return StrategyDensity }

// Cluster implements Strategy.
func (d *DensityStrategy) Cluster(ctx context.Context, items []core.Item) (Result, error) {
	out, labels, err := ClusterEmbedding(ctx, items, d.MinClusterSize, d.Metric, d.Embedder)
	if err != nil {
		return Result{}, err
	}
	return Result{Items: out, Labels: labels, Strategy: d.Name()}, nil
}

// ClusterEmbedding embeds every item with one batched call and runs HDBSCAN
// over the vectors. It sets ClusterID on every item and returns the items and
// the label per item. With fewer items than minClusterSize everything is noise.
func ClusterEmbedding(ctx context.Context, items []core.Item, minClusterSize int, metric string, embedder embedding.Embedder) ([]core.Item, []int, error) {
	log := logger.Get().With("component", "clustering", "strategy", StrategyDensity)

	if minClusterSize < 1 {
		return nil, nil, fmt.Errorf("min cluster size must be at least 1, got %d", minClusterSize)
	}
	distance, err := Metric(metric)
	if err != nil {
		return nil, nil, err
	}
	if embedder == nil {
		return nil, nil, fmt.Errorf("%w: no embedder configured", core.ErrResourceUnavailable)
	}

	// A cluster of one is every point on its own; a split needs two.
	size := minClusterSize
	if size < 2 {
		log.Debug("raising min cluster size to 2")
		size = 2
	}

	labels := make([]int, len(items))
	if len(items) < size {
		for i := range labels {
			labels[i] = core.NoiseClusterID
		}
		log.Debug("too few items for a cluster", "items", len(items), "min_cluster_size", size)
		return apply(items, labels), labels, nil
	}

	vectors, err := embedder.Embed(ctx, embeddingTexts(items))
	if err != nil {
		return nil, nil, fmt.Errorf("embed items: %w", err)
	}
	if len(vectors) != len(items) {
		return nil, nil, fmt.Errorf("expected %d embeddings, got %d", len(items), len(vectors))
	}

	clusters, err := runHDBSCAN(vectors, size, distance)
	if err != nil {
		return nil, nil, err
	}

	labels = labelPoints(len(items), clusters)
	logSummary(log, labels)
	return apply(items, labels), labels, nil
}

// runHDBSCAN builds the mutual reachability graph, its minimum spanning tree
// and single-linkage hierarchy, condenses the hierarchy with minClusterSize and
// returns the clusters picked by excess of mass.
func runHDBSCAN(vectors [][]float64, minClusterSize int, distance DistanceFunc) ([]clusterData, error) {
	if len(vectors) < minClusterSize {
		return nil, fmt.Errorf("HDBSCAN needs at least %d points, got %d", minClusterSize, len(vectors))
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("embedding %d has %d dimensions, want %d", i, len(v), dim)
		}
	}

	reach := mutualReachability(vectors, minClusterSize, distance)
	links := singleLinkage(len(vectors), minimumSpanningTree(reach))
	tree := condense(links, len(vectors), minClusterSize)
	return tree.members(tree.selectClusters()), nil
}

// labelPoints turns the selected clusters into one label per point.
// Clusters are numbered by their lowest point index so ids are stable across
// runs; a point claimed by several clusters keeps the first.
func labelPoints(n int, clusters []clusterData) []int {
	labels := make([]int, n)
	for i := range labels {
		labels[i] = core.NoiseClusterID
	}

	order := make([]int, 0, len(clusters))
	for i, c := range clusters {
		if len(c.Points) > 0 {
			order = append(order, i)
		}
	}
	sortByLowestPoint(order, clusters)

	for id, ci := range order {
		for _, p := range clusters[ci].Points {
			if p >= 0 && p < n && labels[p] == core.NoiseClusterID {
				labels[p] = id
			}
		}
	}
	return labels
}

func sortByLowestPoint(order []int, clusters []clusterData) {
	lowest := func(c clusterData) int {
		m := c.Points[0]
		for _, p := range c.Points[1:] {
			m = min(m, p)
		}
		return m
	}
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && lowest(clusters[order[j]]) < lowest(clusters[order[j-1]]); j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
}

func logSummary(log *slog.Logger, labels []int) {
	sizes := make(map[int]int)
	for _, l := range labels {
		sizes[l]++
	}
	noise := sizes[core.NoiseClusterID]
	delete(sizes, core.NoiseClusterID)
	log.Info("density clustering complete", "items", len(labels), "clusters", len(sizes), "noise", noise)
}

// clusterData lists the points of one selected cluster.
type clusterData struct {
	Points []int
}
