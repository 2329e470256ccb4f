// Package prediction talks to the external AI service. Every call degrades to
// a canned answer when the service cannot be reached.
package prediction

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	FallbackTrafficPrediction = "AI Service unavailable. Using fallback prediction: Moderate traffic expected."
	FallbackTrendAnalysis     = "AI Service unavailable. Trend analysis temporarily offline."

	maxResponseBytes = 1 << 20
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// PredictTraffic returns the service's prediction text for location.
func (c *Client) PredictTraffic(ctx context.Context, location string) string {
	query := url.Values{"location": {location}}
	body, err := c.get(ctx, "/predict/traffic?"+query.Encode())
	if err != nil {
		c.logger.Warn("traffic prediction failed, using fallback", zap.String("location", location), zap.Error(err))
		return FallbackTrafficPrediction
	}
	return body
}

func (c *Client) AnalyzeTrends(ctx context.Context) string {
	body, err := c.get(ctx, "/analyze/trends")
	if err != nil {
		c.logger.Warn("trend analysis failed, using fallback", zap.Error(err))
		return FallbackTrendAnalysis
	}
	return body
}

func (c *Client) get(ctx context.Context, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return "", err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d %s", res.StatusCode, res.Status)
	}
	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return string(data), nil
}
