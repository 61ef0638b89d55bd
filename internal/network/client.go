// Package network talks to the alert server on behalf of the watcher:
// HTTP fetches with per-request timeouts, and a WebSocket subscription
// with backoff reconnect.
package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yourorg/meteo-alertes/internal/alert"
	"github.com/yourorg/meteo-alertes/internal/model"
)

// Client fetches alert state from one server.
type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient validates the base URL and builds a client whose every
// request carries the given timeout.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q for server URL", u.Scheme)
	}
	return &Client{
		base: u,
		http: &http.Client{Timeout: timeout},
	}, nil
}

// FetchAlert retrieves the current alert record. The response passes
// through the normalization boundary, so a server still answering with
// an older field shape is handled.
func (c *Client) FetchAlert(ctx context.Context) (model.AlertRecord, error) {
	raw, err := c.get(ctx, "/api/alert")
	if err != nil {
		return model.AlertRecord{}, err
	}
	return alert.Decode(raw), nil
}

// FetchWilayas retrieves the region geo dataset.
func (c *Client) FetchWilayas(ctx context.Context) ([]model.Wilaya, error) {
	raw, err := c.get(ctx, "/api/wilayas")
	if err != nil {
		return nil, err
	}
	var body struct {
		Regions []model.Wilaya `json:"regions"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("unmarshalling wilaya dataset: %w", err)
	}
	return body.Regions, nil
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("GET %s timeout: %w", path, err)
		}
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("GET %s returned status %s, body sample: %s", path, resp.Status, string(body))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body for %s: %w", path, err)
	}
	return raw, nil
}
