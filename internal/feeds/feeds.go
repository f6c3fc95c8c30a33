// Package feeds fetches the items that get clustered: a Reddit listing, RSS or
// Atom feeds, or a JSON file.
package feeds

import (
	"context"
	"strings"

	"clusternews/internal/core"
)

// DefaultLimit is the number of items fetched when no limit is given.
const DefaultLimit = 50

// Batch is the result of one fetch.
type Batch struct {
	Items []core.Item
	// FallbackUsed reports that the source served a substitute listing, for
	// example r/all when the personal front page was empty.
	FallbackUsed bool
	// Source names the listing or feed the items came from.
	Source string
}

// Source fetches up to limit items.
type Source interface {
	Fetch(ctx context.Context, limit int) (Batch, error)
}

// ShapeItem applies the item defaults every source must honor: surrounding
// whitespace is trimmed from title and body and placeholder thumbnails become
// empty. The cluster id is cleared.
func ShapeItem(item core.Item) core.Item {
	item.Title = strings.TrimSpace(item.Title)
	item.Body = strings.TrimSpace(item.Body)
	item.Thumbnail = core.NormalizeThumbnail(strings.TrimSpace(item.Thumbnail))
	item.ClusterID = nil
	return item
}

func effectiveLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
