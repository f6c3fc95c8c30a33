package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"clusternews/internal/textnorm"
)

// DefaultHashingDimensions is used when no dimensionality is configured.
const DefaultHashingDimensions = 256

// HashingEmbedder is a deterministic bag-of-words embedder that hashes tokens
// into a fixed number of buckets. It needs no model files or network access.
type HashingEmbedder struct {
	dims int
}

// NewHashingEmbedder creates a hashing embedder with the given dimensionality.
func NewHashingEmbedder(dims int) *HashingEmbedder {
	if dims <= 0 {
		dims = DefaultHashingDimensions
	}
	return &HashingEmbedder{dims: dims}
}

// Dimensions returns the embedding vector size.
func (h *HashingEmbedder) Dimensions() int {
	return h.dims
}

// Embed computes an L2-normalized token-count vector for each text.
func (h *HashingEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	vecs := make([][]float64, len(texts))
	for i, text := range texts {
		vec := make([]float64, h.dims)
		for _, tok := range strings.Fields(textnorm.Normalize(text)) {
			hasher := fnv.New64a()
			_, _ = hasher.Write([]byte(tok))
			vec[hasher.Sum64()%uint64(h.dims)]++
		}

		var norm float64
		for _, v := range vec {
			norm += v * v
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range vec {
				vec[j] /= norm
			}
		}
		vecs[i] = vec
	}
	return vecs, nil
}
