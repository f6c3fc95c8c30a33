// Package embedding turns text into dense vectors. Concrete models sit behind
// the Embedder interface so clustering and naming can run against stubs.
package embedding

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"clusternews/internal/core"
)

// Embedder maps each input text to one vector. Implementations return exactly
// len(texts) vectors, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Provider names accepted by New.
const (
	ProviderGemini  = "gemini"
	ProviderHTTP    = "http"
	ProviderHashing = "hashing"
)

// Config selects and parameterizes an embedding model.
type Config struct {
	Provider   string        // gemini, http or hashing
	Model      string        // model name understood by the provider
	Endpoint   string        // base URL of the embedding service (http provider)
	APIKey     string        // API key (gemini provider, optional bearer for http)
	Dimensions int           // output dimensionality; 0 keeps the provider default
	CacheSize  int           // number of texts kept in the LRU cache; 0 disables caching
	Timeout    time.Duration // per-request timeout for remote providers
}

// New builds the configured embedder. Any failure to construct the model is
// reported as core.ErrResourceUnavailable.
func New(ctx context.Context, cfg Config) (Embedder, error) {
	var (
		e   Embedder
		err error
	)

	switch strings.ToLower(cfg.Provider) {
	case ProviderGemini, "":
		e, err = NewGeminiEmbedder(ctx, cfg)
	case ProviderHTTP:
		e, err = NewHTTPEmbedder(cfg)
	case ProviderHashing:
		e = NewHashingEmbedder(cfg.Dimensions)
	default:
		err = fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: embedding model: %v", core.ErrResourceUnavailable, err)
	}

	if cfg.CacheSize > 0 {
		return NewCachedEmbedder(e, cfg.CacheSize)
	}
	return e, nil
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0 when
// either vector is zero or the lengths differ.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
