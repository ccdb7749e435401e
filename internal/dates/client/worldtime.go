// Package client provides the HTTP clients for the external date services.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"bakery_quote_backend/platform/logger"
)

const userAgent = "bakery-quote-agent"

// WorldTimeClient fetches the current civil date from a WorldTimeAPI-style
// endpoint. Concurrent lookups are deduplicated; the date changes once a day
// and every chat turn may ask for it.
type WorldTimeClient struct {
	url        string
	httpClient *http.Client
	group      singleflight.Group
	log        *logger.Logger
}

// NewWorldTimeClient creates a client for the given endpoint URL.
func NewWorldTimeClient(url string, log *logger.Logger) *WorldTimeClient {
	return &WorldTimeClient{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

type worldTimeResponse struct {
	DateTime string `json:"datetime"`
}

// Today returns the current date reported by the time service.
func (c *WorldTimeClient) Today(ctx context.Context) (time.Time, error) {
	v, err, _ := c.group.Do("today", func() (interface{}, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		return time.Time{}, err
	}
	return v.(time.Time), nil
}

func (c *WorldTimeClient) fetch(ctx context.Context) (time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ExternalCallFailed("worldtime", err)
		return time.Time{}, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("upstream status %d", resp.StatusCode)
		c.log.ExternalCallFailed("worldtime", err)
		return time.Time{}, err
	}

	var payload worldTimeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.ExternalCallFailed("worldtime", err)
		return time.Time{}, fmt.Errorf("decode response: %w", err)
	}
	if len(payload.DateTime) < 10 {
		return time.Time{}, fmt.Errorf("response missing datetime")
	}

	day, err := time.Parse("2006-01-02", payload.DateTime[:10])
	if err != nil {
		return time.Time{}, fmt.Errorf("parse datetime: %w", err)
	}
	return day, nil
}
