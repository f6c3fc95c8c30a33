package embedding

import (
	"context"
	"errors"
	"fmt"
	"os"

	"google.golang.org/genai"
)

const (
	// DefaultGeminiModel is the default model for generating embeddings
	DefaultGeminiModel = "gemini-embedding-001"
	// DefaultGeminiDimensions is the output dimension for embeddings (Matryoshka)
	DefaultGeminiDimensions = int32(768)
	// geminiBatchSize is the maximum number of contents per EmbedContent request
	geminiBatchSize = 100
)

// GeminiEmbedder generates embeddings with the Gemini API.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
	dims   int32
}

// NewGeminiEmbedder creates a Gemini-backed embedder. The API key comes from the
// config or, failing that, GEMINI_API_KEY.
func NewGeminiEmbedder(ctx context.Context, cfg Config) (*GeminiEmbedder, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("gemini API key not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	dims := DefaultGeminiDimensions
	if cfg.Dimensions > 0 {
		dims = int32(cfg.Dimensions)
	}

	return &GeminiEmbedder{client: client, model: model, dims: dims}, nil
}

// Embed generates one embedding per text, batching requests.
func (g *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	result := make([][]float64, 0, len(texts))

	for start := 0; start < len(texts); start += geminiBatchSize {
		end := min(start+geminiBatchSize, len(texts))

		contents := make([]*genai.Content, 0, end-start)
		for _, text := range texts[start:end] {
			contents = append(contents, &genai.Content{
				Parts: []*genai.Part{{Text: text}},
				Role:  "user",
			})
		}

		dims := g.dims
		resp, err := g.client.Models.EmbedContent(ctx, g.model, contents, &genai.EmbedContentConfig{
			OutputDimensionality: &dims,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to generate embeddings: %w", err)
		}
		if resp == nil || len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("expected %d embeddings from API, got %d", end-start, embeddingCount(resp))
		}

		for _, emb := range resp.Embeddings {
			if emb == nil {
				return nil, errors.New("nil embedding returned from API")
			}
			vec := make([]float64, len(emb.Values))
			for i, v := range emb.Values {
				vec[i] = float64(v)
			}
			result = append(result, vec)
		}
	}

	return result, nil
}

func embeddingCount(resp *genai.EmbedContentResponse) int {
	if resp == nil {
		return 0
	}
	return len(resp.Embeddings)
}
