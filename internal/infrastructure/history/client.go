package history

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/dealscope/backend/internal/domain"
)

// Client reads historical price observations from the external tracking
// service. The engine only consumes history; it never writes any.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a new price-history client
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type historyResponse struct {
	ProductID string `json:"product_id"`
	Points    []struct {
		Date  string `json:"date"`
		Price int64  `json:"price"`
	} `json:"points"`
}

// History returns the recorded price points for a product, oldest first.
// An unknown product is an empty history, not an error.
func (c *Client) History(ctx context.Context, productID string) ([]domain.PricePoint, error) {
	endpoint := fmt.Sprintf("%s/v1/history/%s", c.baseURL, url.PathEscape(productID))
	if c.apiKey != "" {
		endpoint = fmt.Sprintf("%s?api_key=%s", endpoint, url.QueryEscape(c.apiKey))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return []domain.PricePoint{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrSourceUnavailable, resp.StatusCode)
	}

	var historyResp historyResponse
	if err := json.NewDecoder(resp.Body).Decode(&historyResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	points := make([]domain.PricePoint, 0, len(historyResp.Points))
	for _, p := range historyResp.Points {
		if p.Price < 0 {
			continue
		}
		points = append(points, domain.PricePoint{
			Date:            p.Date,
			PriceMinorUnits: p.Price,
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})

	return points, nil
}
