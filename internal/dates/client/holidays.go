package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bakery_quote_backend/internal/dates"
	"bakery_quote_backend/platform/logger"
)

// HolidayClient checks a calendar date against a public-holiday API
// (Nager.Date compatible). The check is advisory: when the service cannot be
// reached or answers with something other than a holiday list, the client
// abstains instead of failing the date.
type HolidayClient struct {
	urlTemplate string
	country     string
	httpClient  *http.Client
	log         *logger.Logger
}

// NewHolidayClient creates a client. urlTemplate must contain {year} and
// {country} placeholders.
func NewHolidayClient(urlTemplate, country string, log *logger.Logger) *HolidayClient {
	return &HolidayClient{
		urlTemplate: urlTemplate,
		country:     country,
		httpClient:  &http.Client{Timeout: 5 * time.Second},
		log:         log,
	}
}

// Validate reports whether the holiday calendar for the date's year could be
// consulted. A reachable calendar validates the date regardless of whether it
// is a holiday; holidays are quotable days.
func (c *HolidayClient) Validate(ctx context.Context, date time.Time) dates.Verdict {
	url := strings.NewReplacer(
		"{year}", fmt.Sprintf("%d", date.Year()),
		"{country}", c.country,
	).Replace(c.urlTemplate)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return dates.VerdictUnavailable
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ExternalCallFailed("holiday-api", err)
		return dates.VerdictUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.ExternalCallFailed("holiday-api", fmt.Errorf("upstream status %d", resp.StatusCode))
		return dates.VerdictUnavailable
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.log.ExternalCallFailed("holiday-api", err)
		return dates.VerdictUnavailable
	}

	var holidays []json.RawMessage
	if err := json.Unmarshal(body, &holidays); err != nil {
		return dates.VerdictUnavailable
	}
	return dates.VerdictValidated
}
