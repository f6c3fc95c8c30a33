package clustering

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"clusternews/internal/core"
	"clusternews/internal/logger"
	"clusternews/internal/stopwords"
	"clusternews/internal/textnorm"
	"clusternews/internal/tfidf"
)

// KMeansConfig holds configuration for K-means clustering
type KMeansConfig struct {
	MaxIterations int     // Maximum number of Lloyd iterations per restart
	Tolerance     float64 // Convergence tolerance on total centroid movement
	Restarts      int     // Number of k-means++ initializations; lowest inertia wins
	Seed          int64   // Seed of the random source shared by all restarts
}

// DefaultKMeansConfig returns the configuration used by ClusterBagOfWords.
func DefaultKMeansConfig() KMeansConfig {
	return KMeansConfig{
		MaxIterations: 300,
		Tolerance:     1e-8,
		Restarts:      10,
		Seed:          42,
	}
}

// BagOfWordsStrategy partitions items into exactly K groups by k-means over
// TF-IDF vectors. It never produces noise.
type BagOfWordsStrategy struct {
	K         int
	Stopwords stopwords.Set
	Config    KMeansConfig
	// ClampK lowers K to the number of items instead of failing.
	ClampK bool
}

// Name implements Strategy.
func (b *BagOfWordsStrategy) Name() string { return StrategyBagOfWords }

// Cluster implements Strategy.
func (b *BagOfWordsStrategy) Cluster(_ context.Context, items []core.Item) (Result, error) {
	k := b.K
	if b.ClampK && k > len(items) && len(items) > 0 {
		k = len(items)
	}

	stops := b.Stopwords
	if stops.Len() == 0 {
		var err error
		if stops, err = stopwords.Build(); err != nil {
			return Result{}, err
		}
	}

	cfg := b.Config
	if cfg == (KMeansConfig{}) {
		cfg = DefaultKMeansConfig()
	}

	out, labels, err := clusterBagOfWords(items, k, stops, cfg)
	if err != nil {
		return Result{}, err
	}
	return Result{Items: out, Labels: labels, Strategy: b.Name()}, nil
}

// ClusterBagOfWords normalizes every item, weights terms with TF-IDF and runs
// seeded k-means. Identical input always yields identical labels, each in
// [0, k). It sets ClusterID on every item.
func ClusterBagOfWords(items []core.Item, k int, stops stopwords.Set) ([]core.Item, []int, error) {
	return clusterBagOfWords(items, k, stops, DefaultKMeansConfig())
}

func clusterBagOfWords(items []core.Item, k int, stops stopwords.Set, cfg KMeansConfig) ([]core.Item, []int, error) {
	if len(items) == 0 {
		return nil, nil, fmt.Errorf("%w: no items to cluster", core.ErrDegenerateInput)
	}
	if k < 1 || k > len(items) {
		return nil, nil, fmt.Errorf("%w: k=%d for %d items", ErrInvalidClusterCount, k, len(items))
	}

	docs := make([]string, len(items))
	anyText := false
	for i, item := range items {
		doc, ok := textnorm.Document(item.Title, item.Body)
		docs[i] = doc
		anyText = anyText || ok
	}
	if !anyText {
		return nil, nil, fmt.Errorf("%w: every item is empty", core.ErrDegenerateInput)
	}

	model, err := tfidf.Fit(docs, stops)
	if errors.Is(err, tfidf.ErrEmptyVocabulary) {
		return nil, nil, fmt.Errorf("%w: %v", core.ErrDegenerateInput, err)
	}
	if err != nil {
		return nil, nil, err
	}

	labels, inertia := kmeans(model.Weights, k, cfg)

	logger.Get().Info("bag-of-words clustering complete",
		"component", "clustering", "items", len(items), "k", k,
		"terms", len(model.Vocabulary), "inertia", inertia)

	return apply(items, labels), labels, nil
}

// kmeans runs cfg.Restarts seeded k-means++ initializations and keeps the
// labeling with the lowest inertia. Labels are renumbered in order of first
// appearance.
func kmeans(data [][]float64, k int, cfg KMeansConfig) ([]int, float64) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	restarts := max(cfg.Restarts, 1)

	var best []int
	bestInertia := math.Inf(1)
	for r := 0; r < restarts; r++ {
		centroids := initializeCentroidsKMeansPP(data, k, rng)
		labels, inertia := lloyd(data, centroids, cfg)
		if inertia < bestInertia {
			best, bestInertia = labels, inertia
		}
	}

	return renumber(best), bestInertia
}

// initializeCentroidsKMeansPP picks the first centroid uniformly and every
// following one with probability proportional to its squared distance from
// the nearest centroid chosen so far.
func initializeCentroidsKMeansPP(data [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(data[rng.Intn(len(data))]))

	weights := make([]float64, len(data))
	for len(centroids) < k {
		total := 0.0
		for j, point := range data {
			weights[j] = math.Inf(1)
			for _, c := range centroids {
				weights[j] = math.Min(weights[j], squaredDistance(point, c))
			}
			total += weights[j]
		}

		if total == 0 {
			centroids = append(centroids, clone(data[rng.Intn(len(data))]))
			continue
		}

		target := rng.Float64() * total
		selected := len(data) - 1
		cumulative := 0.0
		for j, w := range weights {
			cumulative += w
			if w > 0 && cumulative > target {
				selected = j
				break
			}
		}
		centroids = append(centroids, clone(data[selected]))
	}

	return centroids
}

// lloyd alternates assignment and update steps until the centroids stop
// moving. A cluster that loses all its points is re-seeded with the point
// farthest from its own centroid.
func lloyd(data [][]float64, centroids [][]float64, cfg KMeansConfig) ([]int, float64) {
	k := len(centroids)
	dim := len(data[0])
	labels := make([]int, len(data))

	for iter := 0; iter < max(cfg.MaxIterations, 1); iter++ {
		assign(data, centroids, labels)

		next := make([][]float64, k)
		counts := make([]int, k)
		for c := range next {
			next[c] = make([]float64, dim)
		}
		for i, point := range data {
			floats.Add(next[labels[i]], point)
			counts[labels[i]]++
		}
		for c := range next {
			if counts[c] > 0 {
				floats.Scale(1/float64(counts[c]), next[c])
			}
		}
		reseedEmpty(data, centroids, labels, next, counts)

		shift := 0.0
		for c := range next {
			shift += squaredDistance(next[c], centroids[c])
		}
		centroids = next
		if shift <= cfg.Tolerance {
			break
		}
	}

	assign(data, centroids, labels)
	// identical points tie on the lowest centroid index and can empty a
	// cluster again; k <= len(data) guarantees a donor for every empty one
	counts := make([]int, k)
	for _, l := range labels {
		counts[l]++
	}
	reseedEmpty(data, centroids, labels, centroids, counts)
	return labels, inertia(data, centroids, labels)
}

func inertia(data, centroids [][]float64, labels []int) float64 {
	total := 0.0
	for i, point := range data {
		total += squaredDistance(point, centroids[labels[i]])
	}
	return total
}

func reseedEmpty(data, current [][]float64, labels []int, next [][]float64, counts []int) {
	for c := range next {
		if counts[c] > 0 {
			continue
		}
		far, farDist := -1, -1.0
		for i, point := range data {
			if counts[labels[i]] < 2 {
				continue
			}
			if d := squaredDistance(point, current[labels[i]]); d > farDist {
				far, farDist = i, d
			}
		}
		if far < 0 {
			return
		}
		counts[labels[far]]--
		labels[far] = c
		counts[c] = 1
		next[c] = clone(data[far])
	}
}

// assign labels every point with its nearest centroid (lowest index on ties)
// and returns the inertia.
func assign(data, centroids [][]float64, labels []int) float64 {
	inertia := 0.0
	for i, point := range data {
		best, bestDist := 0, math.Inf(1)
		for c, centroid := range centroids {
			if d := squaredDistance(point, centroid); d < bestDist {
				best, bestDist = c, d
			}
		}
		labels[i] = best
		inertia += bestDist
	}
	return inertia
}

func renumber(labels []int) []int {
	ids := make(map[int]int)
	out := make([]int, len(labels))
	for i, l := range labels {
		id, ok := ids[l]
		if !ok {
			id = len(ids)
			ids[l] = id
		}
		out[i] = id
	}
	return out
}

func squaredDistance(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
