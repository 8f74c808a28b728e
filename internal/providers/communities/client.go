package communities

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

// Client calls the community-service search endpoint and its category
// listing.
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

func (c *Client) SearchCommunities(ctx context.Context, query string, page, perPage int) (any, error) {
	params := url.Values{
		"query":    {strings.TrimSpace(query)},
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}
	return c.get(ctx, c.endpoint+"?"+params.Encode(), "community search")
}

// Categories lists the content categories communities are filed under; the
// search facet dropdown is built from it.
func (c *Client) Categories(ctx context.Context) (any, error) {
	return c.get(ctx, c.endpoint+"/categories", "community categories")
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
