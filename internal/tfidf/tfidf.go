// Package tfidf computes term-frequency / inverse-document-frequency weights over
// a small document set and picks the most representative term.
package tfidf

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"gonum.org/v1/gonum/floats"

	"clusternews/internal/stopwords"
)

// MinTermLength is the shortest term (in runes) TopTerm will return.
const MinTermLength = 3

// ErrEmptyVocabulary is returned when no term survives tokenization and stopword removal.
var ErrEmptyVocabulary = errors.New("empty vocabulary")

// tokenPattern matches words of two or more letters, digits or underscores.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenize lowercases text and returns its word tokens in order.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// Analyze tokenizes text and drops stopwords.
func Analyze(text string, stops stopwords.Set) []string {
	tokens := Tokenize(text)
	kept := tokens[:0]
	for _, tok := range tokens {
		if !stops.Contains(tok) {
			kept = append(kept, tok)
		}
	}
	return kept
}

// Model holds the fitted vocabulary and the weight matrix of a document set.
type Model struct {
	// Vocabulary lists terms in lexical order; column j of Weights is Vocabulary[j].
	Vocabulary []string
	// IDF holds the smoothed inverse document frequency of each term.
	IDF []float64
	// Weights has one L2-normalized row per document.
	Weights [][]float64
}

// Fit builds a TF-IDF model over docs. Term counts are raw, idf is
// ln((1+n)/(1+df))+1 and every row is scaled to unit length.
func Fit(docs []string, stops stopwords.Set) (*Model, error) {
	analyzed := make([][]string, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		analyzed[i] = Analyze(doc, stops)
		seen := make(map[string]bool)
		for _, tok := range analyzed[i] {
			if !seen[tok] {
				df[tok]++
				seen[tok] = true
			}
		}
	}

	if len(df) == 0 {
		return nil, ErrEmptyVocabulary
	}

	vocab := make([]string, 0, len(df))
	for term := range df {
		vocab = append(vocab, term)
	}
	sort.Strings(vocab)

	index := make(map[string]int, len(vocab))
	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	for j, term := range vocab {
		index[term] = j
		idf[j] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	weights := make([][]float64, len(docs))
	for i, tokens := range analyzed {
		row := make([]float64, len(vocab))
		for _, tok := range tokens {
			row[index[tok]]++
		}
		floats.Mul(row, idf)
		if norm := floats.Norm(row, 2); norm > 0 {
			floats.Scale(1/norm, row)
		}
		weights[i] = row
	}

	return &Model{Vocabulary: vocab, IDF: idf, Weights: weights}, nil
}

// MeanWeights returns the average weight of every term across documents.
func (m *Model) MeanWeights() []float64 {
	mean := make([]float64, len(m.Vocabulary))
	if len(m.Weights) == 0 {
		return mean
	}
	for _, row := range m.Weights {
		floats.Add(mean, row)
	}
	floats.Scale(1/float64(len(m.Weights)), mean)
	return mean
}

// TopTerm returns the term with the highest mean weight. Ties go to the term
// that sorts first. A winner shorter than MinTermLength yields no candidate.
func (m *Model) TopTerm() (string, bool) {
	if m == nil || len(m.Vocabulary) == 0 {
		return "", false
	}
	best := m.Vocabulary[floats.MaxIdx(m.MeanWeights())]
	if utf8.RuneCountInString(best) < MinTermLength {
		return "", false
	}
	return best, true
}

// TopTerm fits docs and returns the most representative term, if any.
func TopTerm(docs []string, stops stopwords.Set) (string, bool, error) {
	model, err := Fit(docs, stops)
	if err != nil {
		return "", false, err
	}
	term, ok := model.TopTerm()
	return term, ok, nil
}
