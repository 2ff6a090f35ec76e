package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"reelpipe/internal/config"
	"reelpipe/internal/content"
	"reelpipe/internal/logging"
	"reelpipe/internal/services"
	"reelpipe/internal/stage"
)

const maxListingLimit = 100

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.base = client
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client implements stage.ContentAcquirer against Reddit.
type Client struct {
	cfg      config.Reddit
	base     *http.Client
	http     *http.Client
	host     string
	interval time.Duration
	logger   *slog.Logger
}

// New constructs a Client from the reddit configuration section.
func New(cfg config.Reddit, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.UserAgent) == "" {
		return nil, errors.New("reddit: user agent required")
	}
	c := &Client{
		cfg:      cfg,
		base:     &http.Client{Timeout: 30 * time.Second},
		interval: time.Duration(cfg.RequestIntervalMS) * time.Millisecond,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "reddit")

	base := *c.base
	base.Transport = &userAgentTransport{agent: cfg.UserAgent, next: base.Transport}
	if cfg.HasCredentials() {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &base)
		c.http = cc.Client(tokenCtx)
		c.http.Timeout = base.Timeout
		c.host = strings.TrimRight(cfg.OAuthBaseURL, "/")
	} else {
		c.http = &base
		c.host = strings.TrimRight(cfg.BaseURL, "/")
	}
	return c, nil
}

// Authenticated reports whether requests use OAuth credentials.
func (c *Client) Authenticated() bool {
	return c.cfg.HasCredentials()
}

// Fetch reads the top posts of each subreddit in order. A subreddit that
// fails is logged and skipped; the call fails only when every subreddit
// fails or ctx is cancelled.
func (c *Client) Fetch(ctx context.Context, req stage.FetchRequest) ([]content.Item, error) {
	if len(req.Subreddits) == 0 {
		return nil, services.Wrap(services.ErrAcquire, "content", "fetch", "no subreddits configured", nil)
	}
	limit := min(max(req.PostsPerSub, 1), maxListingLimit)

	var (
		items    []content.Item
		failures int
		lastErr  error
	)
	for i, sub := range req.Subreddits {
		if i > 0 {
			if err := c.pause(ctx); err != nil {
				return nil, services.Wrap(services.ErrCancelled, "content", "fetch", "cancelled between subreddits", err)
			}
		}
		posts, err := c.fetchSubreddit(ctx, sub, limit)
		if err != nil {
			if ctx.Err() != nil {
				return nil, services.Wrap(services.ErrCancelled, "content", "fetch", "r/"+sub, ctx.Err())
			}
			failures++
			lastErr = err
			logging.WarnWithContext(c.logger, "subreddit fetch failed", "subreddit_fetch_failed",
				logging.String("subreddit", sub),
				logging.String(logging.FieldImpact, "posts from this subreddit are skipped"),
				logging.Error(err),
			)
			continue
		}
		for _, p := range posts {
			items = append(items, content.NewItem(content.Post{
				ID:         p.ID,
				Subreddit:  sub,
				Title:      p.Title,
				Body:       p.Selftext,
				Author:     p.Author,
				Score:      p.Score,
				Permalink:  p.Permalink,
				CreatedUTC: p.CreatedUTC,
			}))
		}
		c.logger.Info("subreddit fetched",
			logging.String("subreddit", sub),
			logging.Int("posts", len(posts)),
		)
	}
	if failures == len(req.Subreddits) {
		return nil, services.Wrap(services.ErrAcquire, "content", "fetch",
			fmt.Sprintf("all %d subreddits failed", failures), lastErr)
	}
	return items, nil
}

func (c *Client) fetchSubreddit(ctx context.Context, sub string, limit int) ([]post, error) {
	query := url.Values{}
	query.Set("t", c.cfg.TimeFilter)
	query.Set("limit", strconv.Itoa(limit))
	query.Set("raw_json", "1")
	endpoint := fmt.Sprintf("%s/r/%s/top.json?%s", c.host, url.PathEscape(sub), query.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request r/%s: %w", sub, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("request r/%s: status %d: %s", sub, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var page listing
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode r/%s listing: %w", sub, err)
	}
	posts := make([]post, 0, len(page.Data.Children))
	for _, ch := range page.Data.Children {
		if ch.Kind != "" && ch.Kind != "t3" {
			continue
		}
		if !ch.Data.usable() {
			continue
		}
		posts = append(posts, ch.Data)
	}
	return posts, nil
}

func (c *Client) pause(ctx context.Context) error {
	if c.interval <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(c.interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// HealthCheck reports the access mode. Anonymous access works but is
// heavily rate limited.
func (c *Client) HealthCheck(context.Context) stage.Health {
	if c.Authenticated() {
		return stage.Healthy("reddit")
	}
	h := stage.Healthy("reddit")
	h.Detail = "anonymous access; set REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET for OAuth"
	return h
}

type userAgentTransport struct {
	agent string
	next  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.agent)
	return next.RoundTrip(clone)
}
