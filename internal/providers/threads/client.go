package threads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"aycom/exploreservice/internal/domain"
)

const maxResponseBytes = 4 << 20

// Client calls the thread-service full-text search endpoint, with and
// without the media-only constraint.
type Client struct {
	endpoint  string
	userAgent string
	http      *http.Client
}

type Config struct {
	Endpoint  string
	UserAgent string
	Client    *http.Client
}

func NewClient(cfg Config) *Client {
	httpClient := cfg.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		endpoint:  strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"),
		userAgent: strings.TrimSpace(cfg.UserAgent),
		http:      httpClient,
	}
}

func (c *Client) SearchThreads(ctx context.Context, query string, page, perPage int, opts domain.ThreadQueryOptions) (any, error) {
	return c.search(ctx, query, page, perPage, opts, false)
}

func (c *Client) SearchThreadsWithMedia(ctx context.Context, query string, page, perPage int, opts domain.ThreadQueryOptions) (any, error) {
	return c.search(ctx, query, page, perPage, opts, true)
}

func (c *Client) search(ctx context.Context, query string, page, perPage int, opts domain.ThreadQueryOptions, mediaOnly bool) (any, error) {
	params := url.Values{
		"query":    {strings.TrimSpace(query)},
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}
	if opts.SortBy != "" {
		params.Set("sort_by", string(opts.SortBy))
	}
	if opts.Filter != "" && opts.Filter != domain.FilterAll {
		params.Set("filter", string(opts.Filter))
	}
	if opts.Facet != "" {
		params.Set("category", opts.Facet)
	}
	if mediaOnly {
		params.Set("media_only", "true")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("thread search HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("thread search decode: %w", err)
	}
	return payload, nil
}
