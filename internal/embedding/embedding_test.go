package embedding

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clusternews/internal/core"
)

type countingEmbedder struct {
	calls [][]string
}

func (c *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	c.calls = append(c.calls, append([]string(nil), texts...))
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = []float64{float64(len(t))}
	}
	return out, nil
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, []string) ([][]float64, error) {
	return nil, errors.New("model offline")
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{1, 2}, []float64{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity([]float64{0, 0}, []float64{1, 1}))
	assert.Equal(t, 0.0, CosineSimilarity([]float64{1}, []float64{1, 1}))
}

func TestHashingEmbedderDeterministic(t *testing.T) {
	e := NewHashingEmbedder(64)
	texts := []string{"Election results tonight", "election RESULTS tonight!", "Cats and dogs", ""}

	first, err := e.Embed(context.Background(), texts)
	require.NoError(t, err)
	second, err := e.Embed(context.Background(), texts)
	require.NoError(t, err)

	require.Len(t, first, len(texts))
	assert.Equal(t, first, second)
	assert.Len(t, first[0], 64)

	// Normalization makes case and punctuation irrelevant.
	assert.InDelta(t, 1.0, CosineSimilarity(first[0], first[1]), 1e-9)
	assert.Less(t, CosineSimilarity(first[0], first[2]), 1.0)

	for _, v := range first[3] {
		assert.Zero(t, v)
	}
}

func TestHashingEmbedderDefaultDimensions(t *testing.T) {
	assert.Equal(t, DefaultHashingDimensions, NewHashingEmbedder(0).Dimensions())
}

func TestCachedEmbedder(t *testing.T) {
	inner := &countingEmbedder{}
	cached, err := NewCachedEmbedder(inner, 8)
	require.NoError(t, err)

	vecs, err := cached.Embed(context.Background(), []string{"a", "bb", "a"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1}, {2}, {1}}, vecs)
	require.Len(t, inner.calls, 1)
	assert.Equal(t, []string{"a", "bb"}, inner.calls[0])

	vecs, err = cached.Embed(context.Background(), []string{"bb", "ccc"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{2}, {3}}, vecs)
	require.Len(t, inner.calls, 2)
	assert.Equal(t, []string{"ccc"}, inner.calls[1])

	_, err = cached.Embed(context.Background(), []string{"a", "ccc"})
	require.NoError(t, err)
	assert.Len(t, inner.calls, 2, "fully cached request must not reach the model")
	assert.Equal(t, 3, cached.Len())
}

func TestCachedEmbedderPropagatesErrors(t *testing.T) {
	cached, err := NewCachedEmbedder(failingEmbedder{}, 4)
	require.NoError(t, err)

	_, err = cached.Embed(context.Background(), []string{"x"})
	assert.EqualError(t, err, "model offline")
	assert.Zero(t, cached.Len())
}

func TestHTTPEmbedder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embed", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		var req embedRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, DefaultHTTPModel, req.Model)

		resp := embedResponse{}
		for i := range req.Texts {
			resp.Embeddings = append(resp.Embeddings, []float64{float64(i), 1})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e, err := NewHTTPEmbedder(Config{Endpoint: srv.URL + "/", APIKey: "secret"})
	require.NoError(t, err)

	vecs, err := e.Embed(context.Background(), []string{"one", "two"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 1}, {1, 1}}, vecs)
}

func TestHTTPEmbedderCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[[1,2]]}`))
	}))
	defer srv.Close()

	e, err := NewHTTPEmbedder(Config{Endpoint: srv.URL})
	require.NoError(t, err)

	_, err = e.Embed(context.Background(), []string{"one", "two"})
	assert.ErrorContains(t, err, "expected 2 embeddings")
}

func TestHTTPEmbedderStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e, err := NewHTTPEmbedder(Config{Endpoint: srv.URL})
	require.NoError(t, err)

	_, err = e.Embed(context.Background(), []string{"one"})
	assert.ErrorContains(t, err, "unexpected status")
}

func TestNew(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := New(context.Background(), Config{Provider: "gemini"})
	assert.ErrorIs(t, err, core.ErrResourceUnavailable)

	_, err = New(context.Background(), Config{Provider: "http"})
	assert.ErrorIs(t, err, core.ErrResourceUnavailable)

	_, err = New(context.Background(), Config{Provider: "word2vec"})
	assert.ErrorIs(t, err, core.ErrResourceUnavailable)

	e, err := New(context.Background(), Config{Provider: "hashing", Dimensions: 32})
	require.NoError(t, err)
	assert.IsType(t, &HashingEmbedder{}, e)

	e, err = New(context.Background(), Config{Provider: "hashing", CacheSize: 16})
	require.NoError(t, err)
	assert.IsType(t, &CachedEmbedder{}, e)
}
