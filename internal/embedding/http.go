package embedding

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// DefaultHTTPModel is the sentence-transformers model requested from the sidecar.
const DefaultHTTPModel = "all-MiniLM-L6-v2"

// HTTPEmbedder talks to an embedding sidecar (for example a sentence-transformers
// server) that accepts {"model", "texts"} on POST /embed and answers with
// {"embeddings": [[...], ...]}.
type HTTPEmbedder struct {
	endpoint string
	model    string
	apiKey   string
	http     *http.Client
}

// NewHTTPEmbedder creates a reusable HTTP embedder.
func NewHTTPEmbedder(cfg Config) (*HTTPEmbedder, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("embedding endpoint not configured")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	model := cfg.Model
	if model == "" {
		model = DefaultHTTPModel
	}

	return &HTTPEmbedder{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		model:    model,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: timeout},
	}, nil
}

type embedRequest struct {
	Model string   `json:"model"`
	Texts []string `json:"texts"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// Embed sends all texts in one request.
func (h *HTTPEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	body, err := json.Marshal(embedRequest{Model: h.model, Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(out.Embeddings))
	}

	return out.Embeddings, nil
}
