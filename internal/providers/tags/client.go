package tags

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
)

const maxResponseBytes = 4 << 20

// Client calls the hashtag endpoints: trending tags and thread lookup by
// tag.
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

func (c *Client) TrendingTags(ctx context.Context, limit int) (any, error) {
	params := url.Values{
		"limit": {strconv.Itoa(limit)},
	}
	return c.get(ctx, c.endpoint+"/trending?"+params.Encode(), "trending tags")
}

func (c *Client) ThreadsByHashtag(ctx context.Context, tag string, page, perPage int) (any, error) {
	params := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}
	escaped := url.PathEscape(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
	return c.get(ctx, c.endpoint+"/"+escaped+"/threads?"+params.Encode(), "hashtag threads")
}

func (c *Client) get(ctx context.Context, reqURL, label string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
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
		return nil, fmt.Errorf("%s HTTP %d: %s", label, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%s decode: %w", label, err)
	}
	return payload, nil
}
