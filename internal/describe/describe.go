// Package describe talks to the local image description inference service.
// The service takes a base64-encoded image and returns a short alt-text
// candidate; availability is best effort and callers fall back to filename
// heuristics when it is unreachable.
package describe

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client calls the inference HTTP endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// New creates a client for the given endpoint.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type describeRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"` // base64-encoded bytes
}

type describeResponse struct {
	Description string `json:"description"`
	Error       string `json:"error,omitempty"`
}

// Describe sends the image to the inference service and returns its
// description.
func (c *Client) Describe(ctx context.Context, name string, data []byte) (string, error) {
	body, err := json.Marshal(describeRequest{
		Name:  name,
		Image: base64.StdEncoding.EncodeToString(data),
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("describe %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Read a little of the body for the error message, then discard.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return "", fmt.Errorf("describe %s: %s: %s", name, resp.Status, strings.TrimSpace(string(snippet)))
	}

	var dr describeResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return "", fmt.Errorf("describe %s: decode response: %w", name, err)
	}
	if dr.Error != "" {
		return "", fmt.Errorf("describe %s: %s", name, dr.Error)
	}
	if strings.TrimSpace(dr.Description) == "" {
		return "", fmt.Errorf("describe %s: empty description", name)
	}
	return strings.TrimSpace(dr.Description), nil
}
