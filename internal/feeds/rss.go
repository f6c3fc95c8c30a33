package feeds

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"clusternews/internal/core"
	"clusternews/internal/logger"
)

// RSS represents an RSS feed structure
type RSS struct {
	XMLName xml.Name `xml:"rss"`
	Channel Channel  `xml:"channel"`
}

// Atom represents an Atom feed structure
type Atom struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Entries []AtomEntry `xml:"entry"`
}

// Channel represents an RSS channel
type Channel struct {
	Title string    `xml:"title"`
	Items []RSSItem `xml:"item"`
}

// RSSItem represents an RSS item
type RSSItem struct {
	Title       string       `xml:"title"`
	Link        string       `xml:"link"`
	Description string       `xml:"description"`
	Comments    string       `xml:"comments"`
	PubDate     string       `xml:"pubDate"`
	Enclosure   RSSEnclosure `xml:"enclosure"`
}

// RSSEnclosure represents an attached media file
type RSSEnclosure struct {
	URL  string `xml:"url,attr"`
	Type string `xml:"type,attr"`
}

// AtomLink represents an Atom link element
type AtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

// AtomEntry represents an Atom entry
type AtomEntry struct {
	Title     string     `xml:"title"`
	Link      []AtomLink `xml:"link"`
	Summary   string     `xml:"summary"`
	Content   string     `xml:"content"`
	Published string     `xml:"published"`
	Updated   string     `xml:"updated"`
}

// RSSSource reads items from one or more RSS or Atom feeds.
type RSSSource struct {
	URLs      []string
	UserAgent string
	client    *http.Client
}

// NewRSSSource creates a feed source with the given request timeout.
func NewRSSSource(urls []string, userAgent string, timeout time.Duration) *RSSSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if userAgent == "" {
		userAgent = "ClusterNews/1.0"
	}
	return &RSSSource{
		URLs:      urls,
		UserAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

// Fetch reads the feeds in order and returns at most limit items. A feed that
// fails is logged and skipped; Fetch fails only when every feed failed.
func (s *RSSSource) Fetch(ctx context.Context, limit int) (Batch, error) {
	limit = effectiveLimit(limit)
	if len(s.URLs) == 0 {
		return Batch{}, errors.New("no feed URLs configured")
	}

	var (
		items []core.Item
		errs  []error
	)
	for _, url := range s.URLs {
		if len(items) >= limit {
			break
		}
		feedItems, err := s.fetchFeed(ctx, url)
		if err != nil {
			logger.Warn("feed fetch failed", "url", url, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", url, err))
			continue
		}
		items = append(items, feedItems...)
	}

	if len(errs) == len(s.URLs) {
		return Batch{}, errors.Join(errs...)
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return Batch{Items: items, Source: "rss"}, nil
}

func (s *RSSSource) fetchFeed(ctx context.Context, url string) ([]core.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}
	return ParseFeed(body)
}

// ParseFeed decodes an RSS or Atom document into items.
func ParseFeed(data []byte) ([]core.Item, error) {
	var rss RSS
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&rss); err == nil && rss.XMLName.Local == "rss" {
		return parseRSS(rss), nil
	}

	var atom Atom
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&atom); err == nil && atom.XMLName.Local == "feed" {
		return parseAtom(atom), nil
	}

	return nil, errors.New("unable to parse as RSS or Atom feed")
}

func parseRSS(rss RSS) []core.Item {
	items := make([]core.Item, 0, len(rss.Channel.Items))
	for _, entry := range rss.Channel.Items {
		text, image := flattenHTML(entry.Description)
		if strings.HasPrefix(entry.Enclosure.Type, "image/") {
			image = entry.Enclosure.URL
		}
		permalink := entry.Comments
		if permalink == "" {
			permalink = entry.Link
		}
		items = append(items, ShapeItem(core.Item{
			Title:     entry.Title,
			Body:      text,
			URL:       entry.Link,
			Permalink: permalink,
			Thumbnail: image,
			CreatedAt: parseRSSDate(entry.PubDate),
		}))
	}
	return items
}

func parseAtom(atom Atom) []core.Item {
	items := make([]core.Item, 0, len(atom.Entries))
	for _, entry := range atom.Entries {
		var link string
		for _, l := range entry.Link {
			if l.Rel == "" || l.Rel == "alternate" {
				link = l.Href
				break
			}
		}

		raw := entry.Summary
		if raw == "" {
			raw = entry.Content
		}
		text, image := flattenHTML(raw)

		published := entry.Published
		if published == "" {
			published = entry.Updated
		}
		items = append(items, ShapeItem(core.Item{
			Title:     entry.Title,
			Body:      text,
			URL:       link,
			Permalink: link,
			Thumbnail: image,
			CreatedAt: parseAtomDate(published),
		}))
	}
	return items
}

// flattenHTML returns the visible text of an HTML fragment and the source of
// its first image.
func flattenHTML(fragment string) (string, string) {
	if !strings.ContainsAny(fragment, "<&") {
		return fragment, ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment, ""
	}
	image, _ := doc.Find("img").First().Attr("src")
	return strings.Join(strings.Fields(doc.Text()), " "), image
}

// parseRSSDate parses RSS date formats
func parseRSSDate(dateStr string) time.Time {
	if dateStr == "" {
		return time.Time{}
	}

	formats := []string{
		time.RFC1123,
		time.RFC1123Z,
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04:05 MST",
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02 15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, strings.TrimSpace(dateStr)); err == nil {
			return t.UTC()
		}
	}

	return time.Time{}
}

// parseAtomDate parses Atom date formats
func parseAtomDate(dateStr string) time.Time {
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(dateStr)); err == nil {
		return t.UTC()
	}
	return parseRSSDate(dateStr)
}
