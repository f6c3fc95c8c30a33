// Package naming derives a short human-readable label for every cluster.
package naming

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"clusternews/internal/core"
	"clusternews/internal/keyphrase"
	"clusternews/internal/logger"
	"clusternews/internal/stopwords"
	"clusternews/internal/textnorm"
	"clusternews/internal/tfidf"
)

// NoisePolicy controls how the noise cluster is labeled.
type NoisePolicy int

const (
	// NoiseSentinel labels the noise cluster with UnclusteredLabel.
	NoiseSentinel NoisePolicy = iota
	// NoiseOmit leaves the noise cluster without a label.
	NoiseOmit
)

// UnclusteredLabel is the label given to noise items under NoiseSentinel.
const UnclusteredLabel = "Unclustered"

// ParseNoisePolicy converts a config value ("sentinel" or "omit").
func ParseNoisePolicy(value string) (NoisePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "sentinel":
		return NoiseSentinel, nil
	case "omit":
		return NoiseOmit, nil
	default:
		return NoiseSentinel, fmt.Errorf("unknown noise policy %q", value)
	}
}

// Namer labels clusters from their members' text. A Namer holds no per-run
// state and may be reused.
type Namer struct {
	stops     stopwords.Set
	extractor keyphrase.Extractor
	policy    NoisePolicy
	log       *slog.Logger
}

// NewNamer creates a Namer. A nil extractor disables the keyphrase signal.
func NewNamer(stops stopwords.Set, extractor keyphrase.Extractor, policy NoisePolicy) *Namer {
	return &Namer{
		stops:     stops,
		extractor: extractor,
		policy:    policy,
		log:       logger.Get().With("component", "namer"),
	}
}

// Name returns one label per cluster in assignment. Failures of individual
// signals are logged and never abort the pass.
func (n *Namer) Name(ctx context.Context, assignment core.Assignment) core.Labels {
	labels := make(core.Labels, len(assignment))

	for _, id := range assignment.IDs() {
		if id == core.NoiseClusterID {
			if n.policy == NoiseSentinel {
				labels[id] = UnclusteredLabel
			}
			continue
		}
		labels[id] = n.nameCluster(ctx, id, assignment[id])
	}

	return labels
}

func (n *Namer) nameCluster(ctx context.Context, id int, items []core.Item) string {
	fallback := fmt.Sprintf("Cluster %d", id)

	var docs []string
	for _, item := range items {
		if doc := textnorm.Normalize(textnorm.ItemText(item.Title, item.Body)); doc != "" {
			docs = append(docs, doc)
		}
	}
	if len(docs) == 0 {
		return fallback
	}

	tfidfWord, hasWord, err := tfidf.TopTerm(docs, n.stops)
	if err != nil {
		n.log.Warn("term weighting failed", "cluster", id, "error", err)
	}

	var phrase string
	if n.extractor != nil {
		phrases, err := n.extractor.Extract(ctx, strings.Join(docs, " "), keyphrase.DefaultRange, 1)
		if err != nil {
			n.log.Warn("keyphrase extraction failed", "cluster", id, "error", err)
		} else if len(phrases) > 0 {
			phrase = phrases[0].Phrase
		}
	}

	return choose(phrase, tfidfWord, hasWord, fallback)
}

// choose applies the selection rule: a multi-word keyphrase beats the top
// weighted term, which beats the positional fallback.
func choose(phrase, word string, hasWord bool, fallback string) string {
	switch {
	case len(strings.Fields(phrase)) >= 2:
		return titleCase(phrase)
	case hasWord:
		return titleCase(word)
	default:
		return fallback
	}
}

func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}
