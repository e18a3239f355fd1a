package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/dealscope/backend/internal/domain"
	"golang.org/x/time/rate"
)

// Config describes one retail platform gateway
type Config struct {
	ID            string
	Name          string
	BaseURL       string
	APIKey        string
	PageSize      int
	RatePerSecond float64
	Burst         int
}

// Client is a source adapter backed by a retail platform's listing gateway.
// All network side effects live here; the rest of the engine only sees the
// SourceAdapter contract.
type Client struct {
	id          string
	name        string
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	pageSize    int
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new retail gateway client
func NewClient(config Config) *Client {
	rps := config.RatePerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := config.Burst
	if burst <= 0 {
		burst = 5
	}
	pageSize := config.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}

	return &Client{
		id:   config.ID,
		name: config.Name,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     config.BaseURL,
		apiKey:      config.APIKey,
		pageSize:    pageSize,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// ID returns the source identifier this adapter serves
func (c *Client) ID() string {
	return c.id
}

// SetDebug enables verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Fetch queries the gateway for listings matching the query. Failures are
// classified into the outcome status instead of returned as errors: the
// coordinator treats every outcome uniformly and a failing source never
// propagates an error.
func (c *Client) Fetch(ctx context.Context, query, category string) domain.AdapterOutcome {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return c.failure(classifyFetchError(ctx, err), fmt.Sprintf("rate limiter: %v", err))
	}

	endpoint := fmt.Sprintf("%s/v1/listings/search", c.baseURL)
	params := url.Values{}
	params.Add("q", query)
	if category != "" {
		params.Add("category", category)
	}
	params.Add("page_size", fmt.Sprintf("%d", c.pageSize))
	if c.apiKey != "" {
		params.Add("api_key", c.apiKey)
	}
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	var lastDetail string
	for attempt := 1; attempt <= 3; attempt++ {
		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			status := classifyFetchError(ctx, err)
			if status == domain.AdapterStatusTimeout {
				return c.failure(status, err.Error())
			}
			if c.debug {
				log.Printf("[ADAPTER %s] request error (attempt %d): %v", c.id, attempt, err)
			}
			lastDetail = err.Error()
			if attempt < 3 && !sleepBackoff(ctx, attempt) {
				return c.failure(domain.AdapterStatusTimeout, lastDetail)
			}
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			var searchResp searchResponse
			if err := json.Unmarshal(body, &searchResp); err != nil {
				return c.failure(domain.AdapterStatusError, fmt.Sprintf("decode: %v", err))
			}
			return domain.AdapterOutcome{
				SourceID:    c.id,
				Status:      domain.AdapterStatusOK,
				RawListings: mapToRawListings(searchResp.Listings),
			}

		case resp.StatusCode == http.StatusNotFound:
			// The gateway reports no matches as 404; that is an empty
			// result, not a failure
			return domain.AdapterOutcome{SourceID: c.id, Status: domain.AdapterStatusOK}

		case resp.StatusCode == http.StatusTooManyRequests:
			return c.failure(domain.AdapterStatusRateLimited, fmt.Sprintf("status %d", resp.StatusCode))

		case resp.StatusCode >= 500:
			if c.debug {
				log.Printf("[ADAPTER %s] gateway error (attempt %d): status %d", c.id, attempt, resp.StatusCode)
			}
			lastDetail = fmt.Sprintf("status %d", resp.StatusCode)
			if attempt < 3 && !sleepBackoff(ctx, attempt) {
				return c.failure(domain.AdapterStatusTimeout, lastDetail)
			}

		default:
			return c.failure(domain.AdapterStatusError, fmt.Sprintf("status %d", resp.StatusCode))
		}
	}

	return c.failure(domain.AdapterStatusError, lastDetail)
}

// Details retrieves the full detail record for one listing by its external id
func (c *Client) Details(ctx context.Context, externalID string) (*domain.RawDetail, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/listings/%s", c.baseURL, url.PathEscape(externalID))
	params := url.Values{}
	if c.apiKey != "" {
		params.Add("api_key", c.apiKey)
	}
	reqURL := endpoint
	if len(params) > 0 {
		reqURL = fmt.Sprintf("%s?%s", endpoint, params.Encode())
	}

	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrProductNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrSourceUnavailable, resp.StatusCode, string(body))
	}

	var detailResp detailResponse
	if err := json.NewDecoder(resp.Body).Decode(&detailResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return mapToRawDetail(detailResp), nil
}

// doRequest executes an HTTP GET request with proper headers
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "DealScope/1.0")
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

func (c *Client) failure(status domain.AdapterStatus, detail string) domain.AdapterOutcome {
	return domain.AdapterOutcome{SourceID: c.id, Status: status, ErrorDetail: detail}
}

// classifyFetchError separates deadline exhaustion from genuine failures
func classifyFetchError(ctx context.Context, err error) domain.AdapterStatus {
	if ctx.Err() != nil {
		return domain.AdapterStatusTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.AdapterStatusTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.AdapterStatusTimeout
	}
	return domain.AdapterStatusError
}

// sleepBackoff waits before the next retry; false means the deadline fired
func sleepBackoff(ctx context.Context, attempt int) bool {
	select {
	case <-time.After(exponentialBackoff(attempt)):
		return true
	case <-ctx.Done():
		return false
	}
}

// exponentialBackoff doubles the delay per attempt: 500ms, 1s, 2s, ...
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<(attempt-1)) * 500 * time.Millisecond
}
