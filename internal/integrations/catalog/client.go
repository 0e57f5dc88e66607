package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"concierge-agent/internal/domain"
)

// wireItem mirrors the item shape served by the tenant inventory endpoints.
// Field names vary between tenants (WordPress-flavored vs. plain REST), so
// both variants are accepted.
type wireItem struct {
	Name       string   `json:"name"`
	Title      string   `json:"title"`
	Price      *float64 `json:"price"`
	URL        string   `json:"url"`
	Permalink  string   `json:"permalink"`
	Image      string   `json:"image"`
	Attributes string   `json:"attributes"`
}

// wireSnapshot is the envelope returned by the inventory endpoints.
type wireSnapshot struct {
	Results []wireItem `json:"results"`
}

// Client fetches point-in-time inventory snapshots from per-tenant endpoints.
// A single attempt per request; callers treat any error as an empty snapshot.
type Client struct {
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new inventory Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchSnapshot issues one read against the tenant's inventory endpoint and
// returns at most limit items. Transport errors, non-2xx statuses and
// shape mismatches all surface as errors; no retry is performed here.
func (c *Client) FetchSnapshot(ctx context.Context, endpoint string, limit int) ([]domain.InventoryItem, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("catalog: endpoint must not be empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("catalog: unexpected status %d from %s", res.StatusCode, endpoint)
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("catalog: read response body: %w", err)
	}

	var payload wireSnapshot
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("catalog: decode snapshot: %w", err)
	}

	items := make([]domain.InventoryItem, 0, len(payload.Results))
	for _, w := range payload.Results {
		item, ok := toInventoryItem(w)
		if !ok {
			continue
		}
		items = append(items, item)
		if limit > 0 && len(items) >= limit {
			break
		}
	}
	return items, nil
}

// toInventoryItem normalizes one wire item; items without a usable display
// name are dropped.
func toInventoryItem(w wireItem) (domain.InventoryItem, bool) {
	name := strings.TrimSpace(w.Name)
	if name == "" {
		name = strings.TrimSpace(w.Title)
	}
	if name == "" {
		return domain.InventoryItem{}, false
	}

	url := w.URL
	if url == "" {
		url = w.Permalink
	}

	return domain.InventoryItem{
		Name:       name,
		Price:      w.Price,
		URL:        url,
		ImageURL:   w.Image,
		Attributes: strings.TrimSpace(w.Attributes),
	}, true
}
