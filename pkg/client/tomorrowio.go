package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"go.uber.org/zap"
)

// TomorrowClient fetches hourly forecasts from a Tomorrow.io-style endpoint.
// The response is returned as a decoded JSON document; schema navigation is
// left to the caller, which extracts the hourly timeline fields it needs.
type TomorrowClient struct {
	*BaseClient
	apiKey  string
	baseURL string
}

func NewTomorrowClient(apiKey string, config ClientConfig, logger *zap.Logger) *TomorrowClient {
	baseClient := NewBaseClient("tomorrowio", config, logger)
	return &TomorrowClient{
		BaseClient: baseClient,
		apiKey:     apiKey,
		baseURL:    "https://api.tomorrow.io/v4",
	}
}

// WithBaseURL overrides the API endpoint, for tests and proxies.
func (c *TomorrowClient) WithBaseURL(baseURL string) *TomorrowClient {
	c.baseURL = baseURL
	return c
}

// HourlyForecast fetches the forecast document covering at least the next
// five days for the given coordinates.
func (c *TomorrowClient) HourlyForecast(ctx context.Context, lat, lon float64) (map[string]any, error) {
	query := url.Values{}
	query.Set("location", fmt.Sprintf("%g,%g", lat, lon))
	query.Set("apikey", c.apiKey)

	endpoint := fmt.Sprintf("%s/weather/forecast?%s", c.baseURL, query.Encode())

	data, err := c.GetWithRetry(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse forecast response: %w", err)
	}

	return doc, nil
}
