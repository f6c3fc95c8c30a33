package feeds

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"clusternews/internal/core"
	"clusternews/internal/logger"
)

const (
	redditPublicURL = "https://www.reddit.com"
	redditOAuthURL  = "https://oauth.reddit.com"
	redditAuthURL   = "https://www.reddit.com/api/v1/authorize"
	redditTokenURL  = "https://www.reddit.com/api/v1/access_token"
)

// RedditConfig holds the credentials and endpoints of the Reddit source.
type RedditConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	Username     string
	UserAgent    string
	// BaseURL and TokenURL override the Reddit endpoints.
	BaseURL  string
	TokenURL string
	Timeout  time.Duration
}

// Authenticated reports whether the config carries a refresh token grant.
func (c RedditConfig) Authenticated() bool {
	return c.ClientID != "" && c.RefreshToken != ""
}

// RedditSource reads the user's front page, or r/all when the front page is empty.
type RedditSource struct {
	cfg     RedditConfig
	baseURL string
	client  *http.Client
}

// NewRedditSource creates a Reddit source. With a refresh token requests go to
// the OAuth API on the user's behalf; otherwise the public listings are used.
func NewRedditSource(ctx context.Context, cfg RedditConfig) *RedditSource {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		user := cfg.Username
		if user == "" {
			user = "clusternews"
		}
		cfg.UserAgent = fmt.Sprintf("ClusterNews by /u/%s", user)
	}

	base := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &userAgentTransport{agent: cfg.UserAgent, next: http.DefaultTransport},
	}

	s := &RedditSource{cfg: cfg, baseURL: cfg.BaseURL, client: base}
	if !cfg.Authenticated() {
		if s.baseURL == "" {
			s.baseURL = redditPublicURL
		}
		return s
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = redditTokenURL
	}
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   redditAuthURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
		Scopes: []string{"identity", "read"},
	}

	// The token client inherits the user agent; Reddit rejects requests without one.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	s.client = oauthCfg.Client(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
	s.client.Timeout = cfg.Timeout
	if s.baseURL == "" {
		s.baseURL = redditOAuthURL
	}
	return s
}

// Fetch returns the hot listing of the front page. When it is empty the hot
// listing of r/all is returned instead and FallbackUsed is set.
func (s *RedditSource) Fetch(ctx context.Context, limit int) (Batch, error) {
	limit = effectiveLimit(limit)

	items, err := s.listing(ctx, "/hot", limit)
	if err != nil {
		return Batch{}, fmt.Errorf("fetch front page: %w", err)
	}
	if len(items) > 0 {
		return Batch{Items: items, Source: "front"}, nil
	}

	logger.Info("front page is empty, falling back to r/all")
	items, err = s.listing(ctx, "/r/all/hot", limit)
	if err != nil {
		return Batch{}, fmt.Errorf("fetch r/all: %w", err)
	}
	return Batch{Items: items, FallbackUsed: true, Source: "r/all"}, nil
}

type redditListing struct {
	Data struct {
		Children []struct {
			Kind string     `json:"kind"`
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	URL        string  `json:"url"`
	Permalink  string  `json:"permalink"`
	Thumbnail  string  `json:"thumbnail"`
	CreatedUTC float64 `json:"created_utc"`
}

func (s *RedditSource) listing(ctx context.Context, path string, limit int) ([]core.Item, error) {
	if !s.cfg.Authenticated() {
		path += ".json"
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("raw_json", "1")
	endpoint := strings.TrimRight(s.baseURL, "/") + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var out redditListing
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}

	items := make([]core.Item, 0, len(out.Data.Children))
	for _, child := range out.Data.Children {
		if child.Kind != "" && child.Kind != "t3" {
			continue
		}
		items = append(items, s.toItem(child.Data))
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

func (s *RedditSource) toItem(p redditPost) core.Item {
	permalink := p.Permalink
	if strings.HasPrefix(permalink, "/") {
		permalink = redditPublicURL + permalink
	}
	sec, frac := math.Modf(p.CreatedUTC)
	return ShapeItem(core.Item{
		Title:     p.Title,
		Body:      p.Selftext,
		URL:       p.URL,
		Permalink: permalink,
		Thumbnail: p.Thumbnail,
		CreatedAt: time.Unix(int64(sec), int64(frac*1e9)).UTC(),
	})
}

type userAgentTransport struct {
	agent string
	next  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.agent)
	return t.next.RoundTrip(req)
}
