// Package clustering assigns feed items to clusters, either by density over
// sentence embeddings or by centroids over term-weighted bag-of-words vectors.
package clustering

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clusternews/internal/core"
	"clusternews/internal/textnorm"
)

// ErrInvalidClusterCount is returned when k is outside [1, len(items)].
var ErrInvalidClusterCount = errors.New("invalid cluster count")

// Strategy names accepted by ParseStrategy.
const (
	StrategyDensity    = "hdbscan"
	StrategyBagOfWords = "kmeans"
	StrategyAuto       = "auto"
)

// Result is the outcome of one clustering run.
type Result struct {
	Items    []core.Item // the clustered items, ClusterID set on every one
	Labels   []int       // raw label per item, in input order; -1 is noise
	Strategy string      // name of the strategy that produced the labels
}

// NoiseRatio returns the share of items labeled as noise.
func (r Result) NoiseRatio() float64 {
	if len(r.Labels) == 0 {
		return 0
	}
	noise := 0
	for _, l := range r.Labels {
		if l == core.NoiseClusterID {
			noise++
		}
	}
	return float64(noise) / float64(len(r.Labels))
}

// Strategy partitions items. Implementations set ClusterID on every item in
// place and never change the order of items.
type Strategy interface {
	Name() string
	Cluster(ctx context.Context, items []core.Item) (Result, error)
}

// ParseStrategy validates a strategy name from configuration.
func ParseStrategy(name string) (string, error) {
	switch s := strings.ToLower(strings.TrimSpace(name)); s {
	case "", StrategyAuto:
		return StrategyAuto, nil
	case StrategyDensity, "density", "embedding":
		return StrategyDensity, nil
	case StrategyBagOfWords, "bow", "bag-of-words":
		return StrategyBagOfWords, nil
	default:
		return "", fmt.Errorf("unknown clustering strategy %q", name)
	}
}

// embeddingTexts returns the raw text of every item, with the placeholder for
// items that have none.
func embeddingTexts(items []core.Item) []string {
	texts := make([]string, len(items))
	for i, item := range items {
		text := textnorm.ItemText(item.Title, item.Body)
		if text == "" {
			text = textnorm.EmptyPlaceholder
		}
		texts[i] = text
	}
	return texts
}

// apply writes labels onto items in place.
func apply(items []core.Item, labels []int) []core.Item {
	for i := range items {
		items[i].AssignCluster(labels[i])
	}
	return items
}
