package marine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/corelord/corelord/internal/config"
	"github.com/corelord/corelord/internal/models"
)

// Client is the HTTP client for the marine forecast feed. All requests
// run through a breaker so a dead feed fails fast instead of tying up
// fetch workers on timeouts.
type Client struct {
	HTTPClient *http.Client
	baseURL    string
	timeout    time.Duration
	breaker    *FeedBreaker
}

// NewClient creates a new marine feed client.
//
// Parameters:
//
//	cfg: Marine feed configuration.
//
// Returns:
//
//	*Client: Initialized client.
func NewClient(cfg *config.MarineConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimSuffix(cfg.ServiceURL, "/"),
		timeout: timeout,
		breaker: NewFeedBreaker(FeedBreakerConfig{}, logrus.StandardLogger()),
	}
}

// Breaker exposes the client's feed breaker for status reporting.
func (c *Client) Breaker() *FeedBreaker {
	return c.breaker
}

// HealthCheck checks if the marine feed is healthy.
func (c *Client) HealthCheck(ctx context.Context) (*HealthResponse, error) {
	var response HealthResponse
	err := c.makeRequest(ctx, "GET", "/health", nil, &response)
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListBreaks retrieves all surf breaks known to the feed. Entries the
// feed returns without an id or name are dropped, not fatal.
//
// Parameters:
//
//	ctx: Context.
//
// Returns:
//
//	[]models.Break: Normalized breaks.
//	error: Error if retrieval fails.
func (c *Client) ListBreaks(ctx context.Context) ([]models.Break, error) {
	var raw []rawObject
	if err := c.makeRequest(ctx, "GET", "/api/breaks", nil, &raw); err != nil {
		return nil, err
	}

	breaks := make([]models.Break, 0, len(raw))
	for _, entry := range raw {
		b, err := normalizeBreak(entry)
		if err != nil {
			logrus.WithError(err).Warn("Skipping malformed break entry")
			continue
		}
		breaks = append(breaks, b)
	}

	return breaks, nil
}

// GetForecast retrieves the hourly forecast series for a break. Samples
// without a timestamp are dropped; any other missing field stays nil.
//
// Parameters:
//
//	ctx: Context.
//	breakID: Break identifier.
//
// Returns:
//
//	*models.ForecastSeries: Normalized forecast series.
//	error: Error if retrieval fails.
func (c *Client) GetForecast(ctx context.Context, breakID int) (*models.ForecastSeries, error) {
	path := "/api/forecast/" + strconv.Itoa(breakID)

	var raw []rawObject
	if err := c.makeRequest(ctx, "GET", path, nil, &raw); err != nil {
		return nil, err
	}

	series := &models.ForecastSeries{
		BreakID:   breakID,
		FetchedAt: time.Now(),
		Items:     make([]models.ForecastSample, 0, len(raw)),
	}
	for _, entry := range raw {
		s, err := normalizeSample(entry)
		if err != nil {
			logrus.WithError(err).WithField("break_id", breakID).Warn("Skipping malformed forecast sample")
			continue
		}
		series.Items = append(series.Items, s)
	}

	return series, nil
}

// makeRequest is a helper method to make HTTP requests to the marine feed
func (c *Client) makeRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	return c.breaker.Do(ctx, func(ctx context.Context) error {
		return c.doRequest(ctx, method, path, body, result)
	})
}

func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "CoreLord/1.0")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logrus.WithError(err).Debug("Error closing response body")
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response body: %v", ErrFeedUnavailable, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrBreakNotFound, path)
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: feed error (%d)", ErrFeedUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		var errorResp ErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err == nil && errorResp.Error != "" {
			return fmt.Errorf("marine feed error (%d): %s", resp.StatusCode, errorResp.Error)
		}
		return fmt.Errorf("marine feed error (%d): %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
	}

	return nil
}

// BaseURL returns the base URL of the marine feed.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close is provided for interface compatibility; the HTTP client needs
// no explicit cleanup.
func (c *Client) Close() error {
	return nil
}
