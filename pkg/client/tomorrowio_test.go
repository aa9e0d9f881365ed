package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:        2 * time.Second,
		MaxRetries:     0,
		RetryDelay:     time.Millisecond,
		Multiplier:     2,
		BreakerTimeout: time.Second,
	}
}

func TestHourlyForecastRequest(t *testing.T) {
	var gotLocation, gotKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLocation = r.URL.Query().Get("location")
		gotKey = r.URL.Query().Get("apikey")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"timelines":{"hourly":[{"time":"2025-03-05T06:00:00Z","values":{"visibility":16,"cloudCover":3}}]}}`))
	}))
	defer server.Close()

	c := NewTomorrowClient("key-1", testClientConfig(), zap.NewNop()).WithBaseURL(server.URL)

	doc, err := c.HourlyForecast(context.Background(), 45.52, -122.68)
	require.NoError(t, err)

	require.Equal(t, "45.52,-122.68", gotLocation)
	require.Equal(t, "key-1", gotKey)

	timelines, ok := doc["timelines"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, timelines, "hourly")
}

func TestHourlyForecastBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	c := NewTomorrowClient("key", testClientConfig(), zap.NewNop()).WithBaseURL(server.URL)

	_, err := c.HourlyForecast(context.Background(), 0, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse")
}

func TestGetWithRetryRecoversFromServerError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`ok`))
	}))
	defer server.Close()

	cfg := testClientConfig()
	cfg.MaxRetries = 3

	c := NewBaseClient("test", cfg, zap.NewNop())

	body, err := c.GetWithRetry(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, "ok", string(body))
	require.Equal(t, 3, attempts)
}

func TestGetWithRetryDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cfg := testClientConfig()
	cfg.MaxRetries = 3

	c := NewBaseClient("test", cfg, zap.NewNop())

	_, err := c.GetWithRetry(context.Background(), server.URL)
	require.Error(t, err)
	require.Contains(t, err.Error(), "HTTP 404")
	require.Equal(t, 1, attempts)
}

func TestGetWithRetryHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testClientConfig()
	cfg.MaxRetries = 5
	cfg.RetryDelay = time.Second

	c := NewBaseClient("test", cfg, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.GetWithRetry(ctx, server.URL)
	require.Error(t, err)
}
