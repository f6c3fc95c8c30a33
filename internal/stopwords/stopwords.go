// Package stopwords builds the combined English/Russian exclusion list used by
// term weighting and phrase extraction.
package stopwords

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"

	"clusternews/internal/core"
)

//go:embed data/english data/russian
var embedded embed.FS

// Languages lists the stopword files that make up the combined set. Names follow
// the NLTK corpus layout so an NLTK data directory can be used as an override.
var Languages = []string{"english", "russian"}

// AllowList holds category words that stay eligible as cluster names even
// though they are common.
var AllowList = []string{"news", "tech", "sport", "game", "politics"}

// Set is an immutable set of lowercase tokens.
type Set struct {
	words map[string]struct{}
}

// NewSet creates a Set from the given words.
func NewSet(words ...string) Set {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			m[w] = struct{}{}
		}
	}
	return Set{words: m}
}

// Contains reports whether token is a stopword.
func (s Set) Contains(token string) bool {
	_, ok := s.words[token]
	return ok
}

// Len returns the number of stopwords.
func (s Set) Len() int {
	return len(s.words)
}

// Words returns the stopwords in sorted order.
func (s Set) Words() []string {
	result := make([]string, 0, len(s.words))
	for w := range s.words {
		result = append(result, w)
	}
	sort.Strings(result)
	return result
}

// Lists holds the raw per-language stopword lists.
type Lists map[string][]string

// Load reads every language in Languages from fsys. A missing or empty list is
// reported as core.ErrResourceUnavailable.
func Load(fsys fs.FS) (Lists, error) {
	lists := make(Lists, len(Languages))
	for _, lang := range Languages {
		raw, err := fs.ReadFile(fsys, lang)
		if err != nil {
			return nil, fmt.Errorf("%w: stopword list %q: %v", core.ErrResourceUnavailable, lang, err)
		}
		words := parse(raw)
		if len(words) == 0 {
			return nil, fmt.Errorf("%w: stopword list %q is empty", core.ErrResourceUnavailable, lang)
		}
		lists[lang] = words
	}
	return lists, nil
}

func parse(raw []byte) []string {
	var words []string
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, strings.ToLower(line))
	}
	return words
}

// Combine unions the lists and removes the allow-listed words.
func Combine(lists Lists, allow []string) Set {
	var all []string
	for _, lang := range Languages {
		all = append(all, lists[lang]...)
	}
	set := NewSet(all...)
	for _, w := range allow {
		delete(set.words, w)
	}
	return set
}

var (
	initOnce sync.Once
	loaded   Lists
	initErr  error
)

// Init loads the language lists once per process. An empty dir selects the
// embedded lists; otherwise dir must contain one file per language. The first
// call wins: later calls return the outcome of the first one.
func Init(dir string) error {
	initOnce.Do(func() {
		var fsys fs.FS
		if dir == "" {
			sub, err := fs.Sub(embedded, "data")
			if err != nil {
				initErr = fmt.Errorf("%w: embedded stopwords: %v", core.ErrResourceUnavailable, err)
				return
			}
			fsys = sub
		} else {
			fsys = os.DirFS(dir)
		}
		loaded, initErr = Load(fsys)
	})
	return initErr
}

// Build returns a freshly combined stopword set. If Init was never called the
// embedded lists are used; if Init failed, its error is returned.
func Build() (Set, error) {
	if err := Init(""); err != nil {
		return Set{}, err
	}
	return Combine(loaded, AllowList), nil
}
