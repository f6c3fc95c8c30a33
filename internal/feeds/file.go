package feeds

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"clusternews/internal/core"
)

// FileSource reads items from a JSON file holding an array of items.
type FileSource struct {
	Path string
}

// Fetch implements Source.
func (f FileSource) Fetch(_ context.Context, limit int) (Batch, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return Batch{}, fmt.Errorf("read items: %w", err)
	}

	var raw []core.Item
	if err := json.Unmarshal(data, &raw); err != nil {
		return Batch{}, fmt.Errorf("decode items from %s: %w", f.Path, err)
	}

	limit = effectiveLimit(limit)
	if len(raw) > limit {
		raw = raw[:limit]
	}

	items := make([]core.Item, len(raw))
	for i, item := range raw {
		items[i] = ShapeItem(item)
	}
	return Batch{Items: items, Source: f.Path}, nil
}
