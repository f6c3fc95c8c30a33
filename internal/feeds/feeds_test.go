package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clusternews/internal/core"
)

const allListing = `{"data":{"children":[
	{"kind":"t3","data":{"title":" Rust 2.0 ","selftext":"","url":"https://example.com/rust","permalink":"/r/rust/comments/1/rust/","thumbnail":"self","created_utc":1700000000.5}},
	{"kind":"t3","data":{"title":"Cat pics","selftext":"look","url":"https://i.redd.it/cat.jpg","permalink":"/r/cats/comments/2/cat/","thumbnail":"https://b.thumbs.redditmedia.com/cat.jpg","created_utc":1700000100}},
	{"kind":"t1","data":{"title":"a comment"}}
]}}`

func TestShapeItem(t *testing.T) {
	id := 3
	item := ShapeItem(core.Item{Title: "  Hi ", Body: "\n", Thumbnail: "default", ClusterID: &id})

	assert.Equal(t, "Hi", item.Title)
	assert.Equal(t, "", item.Body)
	assert.False(t, item.HasThumbnail())
	assert.Nil(t, item.ClusterID)
}

func TestRedditSourceFallsBackToAll(t *testing.T) {
	var agents []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents = append(agents, r.Header.Get("User-Agent"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		switch r.URL.Path {
		case "/hot.json":
			_, _ = w.Write([]byte(`{"data":{"children":[]}}`))
		case "/r/all/hot.json":
			_, _ = w.Write([]byte(allListing))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := NewRedditSource(context.Background(), RedditConfig{BaseURL: srv.URL, Username: "tester"})
	batch, err := src.Fetch(context.Background(), 25)
	require.NoError(t, err)

	assert.True(t, batch.FallbackUsed)
	assert.Equal(t, "r/all", batch.Source)
	require.Len(t, batch.Items, 2)

	first := batch.Items[0]
	assert.Equal(t, "Rust 2.0", first.Title)
	assert.Equal(t, "", first.Thumbnail)
	assert.Equal(t, "https://www.reddit.com/r/rust/comments/1/rust/", first.Permalink)
	assert.Equal(t, time.Unix(1700000000, 5e8).UTC(), first.CreatedAt)
	assert.Equal(t, "https://b.thumbs.redditmedia.com/cat.jpg", batch.Items[1].Thumbnail)

	for _, ua := range agents {
		assert.Equal(t, "ClusterNews by /u/tester", ua)
	}
}

func TestRedditSourceFrontPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/hot.json", r.URL.Path, "r/all must not be requested")
		_, _ = w.Write([]byte(allListing))
	}))
	defer srv.Close()

	batch, err := NewRedditSource(context.Background(), RedditConfig{BaseURL: srv.URL}).Fetch(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, batch.FallbackUsed)
	assert.Len(t, batch.Items, 1)
}

func TestRedditSourceOAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/access_token":
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "client", user)
			assert.Equal(t, "secret", pass)
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
			assert.Equal(t, "refresh-me", r.PostForm.Get("refresh_token"))
			assert.NotEmpty(t, r.Header.Get("User-Agent"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600}`))
		case "/hot":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(allListing))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := NewRedditSource(context.Background(), RedditConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RefreshToken: "refresh-me",
		BaseURL:      srv.URL,
		TokenURL:     srv.URL + "/api/v1/access_token",
	})

	batch, err := src.Fetch(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, batch.Items, 2)
}

func TestRedditSourceStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewRedditSource(context.Background(), RedditConfig{BaseURL: srv.URL}).Fetch(context.Background(), 10)
	assert.ErrorContains(t, err, "fetch front page")
}

const rssFeed = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Tech</title>
<item>
  <title>Go 1.24 released</title>
  <link>https://go.dev/blog/go1.24</link>
  <description>&lt;p&gt;The &lt;b&gt;new&lt;/b&gt; release&lt;/p&gt;&lt;img src="https://go.dev/pic.png"&gt;</description>
  <comments>https://news.example.com/item?id=1</comments>
  <pubDate>Tue, 11 Feb 2025 10:00:00 +0000</pubDate>
</item>
<item>
  <title>Plain</title>
  <link>https://example.com/plain</link>
  <description>No markup here</description>
</item>
</channel></rss>`

const atomFeed = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom"><title>Blog</title>
<entry>
  <title>Atom entry</title>
  <link rel="alternate" href="https://blog.example.com/post"/>
  <summary>Short summary</summary>
  <updated>2025-02-11T10:00:00Z</updated>
</entry>
</feed>`

func TestParseFeedRSS(t *testing.T) {
	items, err := ParseFeed([]byte(rssFeed))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Go 1.24 released", items[0].Title)
	assert.Equal(t, "The new release", items[0].Body)
	assert.Equal(t, "https://go.dev/pic.png", items[0].Thumbnail)
	assert.Equal(t, "https://news.example.com/item?id=1", items[0].Permalink)
	assert.Equal(t, time.Date(2025, 2, 11, 10, 0, 0, 0, time.UTC), items[0].CreatedAt)

	assert.Equal(t, "No markup here", items[1].Body)
	assert.Equal(t, "https://example.com/plain", items[1].Permalink)
	assert.False(t, items[1].HasThumbnail())
}

func TestParseFeedAtom(t *testing.T) {
	items, err := ParseFeed([]byte(atomFeed))
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "Atom entry", items[0].Title)
	assert.Equal(t, "Short summary", items[0].Body)
	assert.Equal(t, "https://blog.example.com/post", items[0].URL)
	assert.Equal(t, time.Date(2025, 2, 11, 10, 0, 0, 0, time.UTC), items[0].CreatedAt)
}

func TestParseFeedInvalid(t *testing.T) {
	_, err := ParseFeed([]byte("<html><body>nope</body></html>"))
	assert.Error(t, err)
}

func TestRSSSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rss":
			_, _ = w.Write([]byte(rssFeed))
		case "/atom":
			_, _ = w.Write([]byte(atomFeed))
		default:
			http.Error(w, "gone", http.StatusGone)
		}
	}))
	defer srv.Close()

	src := NewRSSSource([]string{srv.URL + "/missing", srv.URL + "/rss", srv.URL + "/atom"}, "", time.Second)

	batch, err := src.Fetch(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, batch.Items, 2, "limit applies across feeds")

	batch, err = src.Fetch(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, batch.Items, 3)

	_, err = NewRSSSource([]string{srv.URL + "/missing"}, "", time.Second).Fetch(context.Background(), 10)
	assert.ErrorContains(t, err, "status 410")
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.json")
	data := `[{"title":"One","body":"first","thumbnail":"self"},{"title":"Two"},{"title":"Three"}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	batch, err := FileSource{Path: path}.Fetch(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, batch.Items, 2)
	assert.Equal(t, "One", batch.Items[0].Title)
	assert.Equal(t, "", batch.Items[0].Thumbnail)

	_, err = FileSource{Path: filepath.Join(t.TempDir(), "missing.json")}.Fetch(context.Background(), 2)
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(strings.Repeat("{", 3)), 0o600))
	_, err = FileSource{Path: bad}.Fetch(context.Background(), 2)
	assert.ErrorContains(t, err, "decode items")
}
