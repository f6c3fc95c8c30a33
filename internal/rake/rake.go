// Package rake implements a lightweight RAKE-style phrase extractor.
package rake

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"clusternews/internal/core"
	"clusternews/internal/stopwords"
)

var sentenceSplit = regexp.MustCompile(`[.?!;\n]`)

// Extract splits text into stopword-delimited candidate phrases and scores each
// one by the total rune length of its tokens. Results are sorted by descending
// score; equal scores keep their order of discovery.
func Extract(text string, stops stopwords.Set) []core.ScoredPhrase {
	var phrases []core.ScoredPhrase

	for _, sentence := range sentenceSplit.Split(text, -1) {
		var run []string
		flush := func() {
			if len(run) == 0 {
				return
			}
			phrases = append(phrases, core.ScoredPhrase{
				Phrase: strings.Join(run, " "),
				Score:  score(run),
			})
			run = nil
		}

		for _, word := range strings.Fields(sentence) {
			if stops.Contains(word) {
				flush()
				continue
			}
			run = append(run, word)
		}
		flush()
	}

	sort.SliceStable(phrases, func(i, j int) bool {
		return phrases[i].Score > phrases[j].Score
	})
	return phrases
}

func score(words []string) float64 {
	total := 0
	for _, w := range words {
		total += utf8.RuneCountInString(w)
	}
	return float64(total)
}
