package profiles

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

// Client calls the user-service profile search endpoint. Responses are
// decoded as raw JSON; the engine's normalizer owns interpretation.
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

func (c *Client) SearchProfiles(ctx context.Context, query string, page, perPage int, opts domain.ProfileQueryOptions) (any, error) {
	params := url.Values{
		"query":    {strings.TrimSpace(query)},
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}
	if opts.Filter != "" && opts.Filter != domain.FilterAll {
		params.Set("filter", string(opts.Filter))
	}
	if opts.Sort != "" {
		params.Set("sort", opts.Sort)
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
		return nil, fmt.Errorf("profile search HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("profile search decode: %w", err)
	}
	return payload, nil
}
