// Package webhook delivers automation payloads to tenant-configured HTTP
// endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/settatam/statusflow/internal/domain"
)

// ErrInvalidURL is returned when the target URL is missing, unparseable, or
// not an http(s) endpoint.
var ErrInvalidURL = errors.New("invalid webhook URL")

// ErrDeliveryFailed is returned when the endpoint answers with a non-2xx
// status code.
var ErrDeliveryFailed = errors.New("webhook delivery failed")

// Caller posts JSON payloads to webhook endpoints. The underlying client is
// reused across calls for connection pooling.
type Caller struct {
	client *http.Client
}

var _ domain.WebhookCaller = (*Caller)(nil)

// NewCaller creates a Caller with a pooled HTTP client. The per-request
// deadline comes from the caller's context; timeout is a hard upper bound
// for endpoints that never answer.
func NewCaller(timeout time.Duration) *Caller {
	return &Caller{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// NewCallerWithClient creates a Caller with a custom HTTP client, used by
// tests to point at a local server.
func NewCallerWithClient(client *http.Client) *Caller {
	return &Caller{client: client}
}

// Call posts payload as JSON to endpoint. A non-2xx response is an error;
// the response body is read and discarded so the connection can be reused.
func (c *Caller) Call(ctx context.Context, endpoint string, payload any) error {
	if err := validateURL(endpoint); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "statusflow-webhook/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s returned %d", ErrDeliveryFailed, endpoint, resp.StatusCode)
	}
	return nil
}

func validateURL(endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("%w: URL is required", ErrInvalidURL)
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidURL)
	}
	return nil
}
