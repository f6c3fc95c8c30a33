// Package keyphrase picks the phrases that best represent a piece of text.
package keyphrase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"clusternews/internal/core"
	"clusternews/internal/embedding"
	"clusternews/internal/rake"
	"clusternews/internal/stopwords"
	"clusternews/internal/tfidf"
)

// NgramRange bounds the number of words in a candidate phrase (inclusive).
type NgramRange struct {
	Min int
	Max int
}

// DefaultRange is the range used for cluster names.
var DefaultRange = NgramRange{Min: 1, Max: 3}

func (r NgramRange) contains(n int) bool {
	return n >= r.Min && n <= r.Max
}

// Extractor ranks candidate phrases of text, best first.
type Extractor interface {
	Extract(ctx context.Context, text string, ngrams NgramRange, topN int) ([]core.ScoredPhrase, error)
}

// EmbeddingExtractor scores every candidate n-gram by the cosine similarity of
// its embedding to the embedding of the whole text.
type EmbeddingExtractor struct {
	embedder embedding.Embedder
	stops    stopwords.Set
}

// NewEmbeddingExtractor creates an extractor backed by the given embedder.
func NewEmbeddingExtractor(embedder embedding.Embedder, stops stopwords.Set) *EmbeddingExtractor {
	return &EmbeddingExtractor{embedder: embedder, stops: stops}
}

// Extract returns up to topN phrases. Ties keep first-appearance order. Text
// without any candidate yields an empty result and no error.
func (e *EmbeddingExtractor) Extract(ctx context.Context, text string, ngrams NgramRange, topN int) ([]core.ScoredPhrase, error) {
	candidates := Candidates(text, ngrams, e.stops)
	if len(candidates) == 0 || topN <= 0 {
		return []core.ScoredPhrase{}, nil
	}

	vecs, err := e.embedder.Embed(ctx, append([]string{text}, candidates...))
	if err != nil {
		return nil, fmt.Errorf("embed candidates: %w", err)
	}
	if len(vecs) != len(candidates)+1 {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(candidates)+1, len(vecs))
	}

	scored := make([]core.ScoredPhrase, len(candidates))
	for i, c := range candidates {
		scored[i] = core.ScoredPhrase{
			Phrase: c,
			Score:  embedding.CosineSimilarity(vecs[0], vecs[i+1]),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored[:min(topN, len(scored))], nil
}

// Candidates lists the unique n-grams of text in first-appearance order.
// Stopwords are removed before n-grams are formed.
func Candidates(text string, ngrams NgramRange, stops stopwords.Set) []string {
	if ngrams.Min < 1 {
		ngrams.Min = 1
	}
	if ngrams.Max < ngrams.Min {
		return nil
	}

	tokens := tfidf.Analyze(text, stops)

	var out []string
	seen := make(map[string]struct{})
	for i := range tokens {
		for n := ngrams.Min; n <= ngrams.Max && i+n <= len(tokens); n++ {
			phrase := strings.Join(tokens[i:i+n], " ")
			if _, dup := seen[phrase]; dup {
				continue
			}
			seen[phrase] = struct{}{}
			out = append(out, phrase)
		}
	}
	return out
}

// RakeExtractor serves the Extractor interface with the statistical RAKE-style
// scorer. It needs no model.
type RakeExtractor struct {
	stops stopwords.Set
}

// NewRakeExtractor creates a RAKE-backed extractor.
func NewRakeExtractor(stops stopwords.Set) *RakeExtractor {
	return &RakeExtractor{stops: stops}
}

// Extract keeps the RAKE phrases whose word count falls inside ngrams. Text is
// lowercased first so stopwords match regardless of case.
func (r *RakeExtractor) Extract(_ context.Context, text string, ngrams NgramRange, topN int) ([]core.ScoredPhrase, error) {
	out := []core.ScoredPhrase{}
	if topN <= 0 {
		return out, nil
	}
	for _, p := range rake.Extract(strings.ToLower(text), r.stops) {
		if !ngrams.contains(len(strings.Fields(p.Phrase))) {
			continue
		}
		out = append(out, p)
		if len(out) == topN {
			break
		}
	}
	return out, nil
}
