package core

import (
	"errors"
	"sort"
	"time"
)

// NoiseClusterID marks items that density-based clustering could not place in any cluster.
const NoiseClusterID = -1

var (
	// ErrDegenerateInput is returned when a corpus has no usable text or vocabulary.
	ErrDegenerateInput = errors.New("degenerate input")
	// ErrResourceUnavailable is returned when a stopword list or model cannot be loaded.
	ErrResourceUnavailable = errors.New("resource unavailable")
)

// Item is a single feed entry (a post, a link, an article).
type Item struct {
	Title     string    `json:"title"`               // Title of the item, may be empty
	Body      string    `json:"body"`                // Self text / description, may be empty
	URL       string    `json:"url"`                 // Link the item points to
	Permalink string    `json:"permalink"`           // Link to the item's discussion page
	Thumbnail string    `json:"thumbnail,omitempty"` // Thumbnail reference, empty when there is none
	CreatedAt time.Time `json:"created_at"`          // Creation time reported by the source
	ClusterID *int      `json:"cluster_id,omitempty"`
}

// Cluster returns the item's cluster id and whether one has been assigned.
func (i Item) Cluster() (int, bool) {
	if i.ClusterID == nil {
		return 0, false
	}
	return *i.ClusterID, true
}

// AssignCluster sets the item's cluster id, overwriting any previous assignment.
func (i *Item) AssignCluster(id int) {
	i.ClusterID = &id
}

// HasThumbnail reports whether the item carries a usable thumbnail reference.
func (i Item) HasThumbnail() bool {
	return i.Thumbnail != ""
}

// NormalizeThumbnail maps the placeholder thumbnail values used by feed sources to "none".
func NormalizeThumbnail(ref string) string {
	switch ref {
	case "", "self", "default":
		return ""
	default:
		return ref
	}
}

// ScoredPhrase is a candidate phrase together with its extractor-specific score.
type ScoredPhrase struct {
	Phrase string  `json:"phrase"`
	Score  float64 `json:"score"`
}

// Assignment maps a cluster id to the items placed in it, in input order.
type Assignment map[int][]Item

// GroupByCluster builds an Assignment from clustered items. Items without a
// cluster id are skipped.
func GroupByCluster(items []Item) Assignment {
	assignment := make(Assignment)
	for _, item := range items {
		id, ok := item.Cluster()
		if !ok {
			continue
		}
		assignment[id] = append(assignment[id], item)
	}
	return assignment
}

// IDs returns the cluster ids in ascending order.
func (a Assignment) IDs() []int {
	ids := make([]int, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Size returns the total number of items across all clusters.
func (a Assignment) Size() int {
	total := 0
	for _, items := range a {
		total += len(items)
	}
	return total
}

// NoiseRatio returns the share of items assigned to the noise cluster.
func (a Assignment) NoiseRatio() float64 {
	total := a.Size()
	if total == 0 {
		return 0
	}
	return float64(len(a[NoiseClusterID])) / float64(total)
}

// Labels maps a cluster id to its display name.
type Labels map[int]string
