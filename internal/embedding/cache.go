package embedding

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedEmbedder memoizes vectors per text in an LRU cache and only forwards
// cache misses to the wrapped embedder.
type CachedEmbedder struct {
	inner Embedder
	cache *lru.Cache[string, []float64]
}

// NewCachedEmbedder wraps inner with a cache holding up to size texts.
func NewCachedEmbedder(inner Embedder, size int) (*CachedEmbedder, error) {
	cache, err := lru.New[string, []float64](size)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &CachedEmbedder{inner: inner, cache: cache}, nil
}

// Embed returns cached vectors where possible and embeds the rest in one call.
// Duplicate texts within a call are embedded once.
func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	result := make([][]float64, len(texts))

	var missing []string
	pending := make(map[string][]int)
	for i, text := range texts {
		if vec, ok := c.cache.Get(text); ok {
			result[i] = vec
			continue
		}
		if _, seen := pending[text]; !seen {
			missing = append(missing, text)
		}
		pending[text] = append(pending[text], i)
	}

	if len(missing) == 0 {
		return result, nil
	}

	vecs, err := c.inner.Embed(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missing) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(missing), len(vecs))
	}

	for j, text := range missing {
		c.cache.Add(text, vecs[j])
		for _, i := range pending[text] {
			result[i] = vecs[j]
		}
	}
	return result, nil
}

// Len returns the number of cached texts.
func (c *CachedEmbedder) Len() int {
	return c.cache.Len()
}
