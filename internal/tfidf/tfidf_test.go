package tfidf

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"clusternews/internal/stopwords"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("Don't PANIC: GPT-4 and Новости x y")
	want := []string{"don", "panic", "gpt", "and", "новости"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestFitWeights(t *testing.T) {
	model, err := Fit([]string{"apple banana", "apple"}, stopwords.NewSet())
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if !reflect.DeepEqual(model.Vocabulary, []string{"apple", "banana"}) {
		t.Fatalf("Vocabulary = %v", model.Vocabulary)
	}

	wantIDF := []float64{1, math.Log(3.0/2.0) + 1}
	for j := range wantIDF {
		if math.Abs(model.IDF[j]-wantIDF[j]) > 1e-9 {
			t.Errorf("IDF[%d] = %f, want %f", j, model.IDF[j], wantIDF[j])
		}
	}

	for i, row := range model.Weights {
		var sq float64
		for _, v := range row {
			sq += v * v
		}
		if math.Abs(sq-1) > 1e-9 {
			t.Errorf("row %d is not unit length: %v", i, row)
		}
	}
	if model.Weights[1][0] != 1 || model.Weights[1][1] != 0 {
		t.Errorf("second row = %v, want [1 0]", model.Weights[1])
	}
}

func TestTopTerm(t *testing.T) {
	docs := []string{
		"election results announced",
		"the election fraud claims",
		"election day",
	}

	term, ok, err := TopTerm(docs, stopwords.NewSet("the"))
	if err != nil {
		t.Fatalf("TopTerm failed: %v", err)
	}
	if !ok || term != "election" {
		t.Errorf("TopTerm = %q, %v; want election, true", term, ok)
	}
}

func TestTopTermTieBreaksLexically(t *testing.T) {
	term, ok, err := TopTerm([]string{"zeta alpha"}, stopwords.NewSet())
	if err != nil || !ok {
		t.Fatalf("TopTerm = %q, %v, %v", term, ok, err)
	}
	if term != "alpha" {
		t.Errorf("TopTerm = %q, want alpha", term)
	}
}

func TestTopTermRejectsShortWinner(t *testing.T) {
	term, ok, err := TopTerm([]string{"ai ai ai", "ai"}, stopwords.NewSet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Errorf("short winner should not be a candidate, got %q", term)
	}
}

func TestFitEmptyVocabulary(t *testing.T) {
	_, err := Fit([]string{"the and", ""}, stopwords.NewSet("the", "and"))
	if !errors.Is(err, ErrEmptyVocabulary) {
		t.Fatalf("expected ErrEmptyVocabulary, got %v", err)
	}

	_, ok, err := TopTerm(nil, stopwords.NewSet())
	if ok || !errors.Is(err, ErrEmptyVocabulary) {
		t.Errorf("TopTerm(nil) = %v, %v", ok, err)
	}
}

func TestNilModelTopTerm(t *testing.T) {
	var m *Model
	if _, ok := m.TopTerm(); ok {
		t.Error("nil model should have no top term")
	}
}
