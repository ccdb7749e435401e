// Package sheets appends committed quotes to a spreadsheet webhook.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bakery_quote_backend/platform/config"
	"bakery_quote_backend/platform/logger"
)

// Client posts quote audit rows to a spreadsheet webhook (an Apps Script or
// similar endpoint that appends a row per call). Appends are best-effort:
// the caller logs failures and moves on.
type Client struct {
	cfg        config.SheetsConfig
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a sheets client.
func NewClient(cfg config.SheetsConfig, log *logger.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// Enabled reports whether a webhook URL is configured.
func (c *Client) Enabled() bool {
	return c.cfg.IsSheetsEnabled()
}

type appendRequest struct {
	Headers []string      `json:"headers"`
	Row     []interface{} `json:"row"`
}

// Append posts one row. Headers travel with every request so the webhook can
// create the sheet header on first use.
func (c *Client) Append(ctx context.Context, headers []string, row []interface{}) error {
	payload, err := json.Marshal(appendRequest{Headers: headers, Row: row})
	if err != nil {
		return fmt.Errorf("marshal sheet row: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GetSheetsWebhookURL(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ExternalCallFailed("sheets", err)
		return fmt.Errorf("post sheet row: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("webhook status %d", resp.StatusCode)
		c.log.ExternalCallFailed("sheets", err)
		return err
	}
	return nil
}
