package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"dining/internal/metrics"
	"dining/internal/model"

	"github.com/rs/zerolog"
)

// DiningClient fetches eateries from the dining API
type DiningClient interface {
	FetchEateries(ctx context.Context) ([]model.Eatery, error)
}

// CornellDiningClient reads the Cornell dining eateries feed
type CornellDiningClient struct {
	url        string
	httpClient *http.Client
	breaker    *breaker
	logger     zerolog.Logger
}

var _ DiningClient = (*CornellDiningClient)(nil)

// NewCornellDiningClient creates a client for the eateries feed at url
func NewCornellDiningClient(url string, timeout time.Duration, m *metrics.Metrics, logger zerolog.Logger) *CornellDiningClient {
	logger = logger.With().Str("component", "dining_api").Logger()
	return &CornellDiningClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    newBreaker("dining-api", m, logger),
		logger:     logger,
	}
}

// FetchEateries downloads and decodes the eateries feed
func (c *CornellDiningClient) FetchEateries(ctx context.Context) ([]model.Eatery, error) {
	body, err := c.breaker.execute(func() ([]byte, error) {
		return c.get(ctx)
	})
	if err != nil {
		return nil, err
	}

	var doc model.EateriesResponse
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode eateries: %w", err)
	}

	c.logger.Debug().Int("eateries", len(doc.Data.Eateries)).Msg("fetched eateries")
	return doc.Data.Eateries, nil
}

func (c *CornellDiningClient) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dining API request failed with status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
