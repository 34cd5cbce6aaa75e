// Package transport delivers queued telemetry batches to a remote collector.
// Delivery is one best-effort HTTP POST per flush; any 2xx status counts as
// acknowledged, anything else is a delivery failure the caller handles by
// requeueing.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

// Config configures one transport client.
type Config struct {
	Endpoint  string
	SourceKey string        // optional X-API-Key value for authenticated collectors
	Timeout   time.Duration // per-request deadline, default 10s
	Client    *http.Client  // defaults to a fresh http.Client
	UserAgent string
}

// Client posts batches to a single collector endpoint.
type Client struct {
	cfg   Config
	httpc *http.Client
}

// New creates a transport client. An empty endpoint yields a client whose
// Send always fails; callers gate on Enabled instead.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	httpc := cfg.Client
	if httpc == nil {
		httpc = &http.Client{}
	}
	return &Client{cfg: cfg, httpc: httpc}
}

// Enabled reports whether the client has somewhere to deliver to.
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.Endpoint != ""
}

// Send posts one batch under the given field name ("events" or "errors"),
// together with the session identifier and a send timestamp.
func (c *Client) Send(ctx context.Context, field string, batch any, sessionID string) error {
	body, err := json.Marshal(map[string]any{
		field:       batch,
		"sessionId": sessionID,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.SourceKey != "" {
		req.Header.Set("X-API-Key", c.cfg.SourceKey)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("post batch: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("collector returned %s", resp.Status)
	}
	return nil
}
