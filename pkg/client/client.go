// Package client implements the Remote Client (SPEC_FULL.md §4.1): the
// daemon's authenticated HTTP link back to the panel.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	acceptHeader = "application/vnd.pterodactyl.v1+json"
	requestTimeout = 15 * time.Second
)

// Version is embedded in the client's User-Agent header.
const Version = "1.0.0"

// Client is a stateless authenticated HTTP client for the remote panel API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokenID    string
	token      string
}

// Config supplies the credentials and connection details for a Client.
type Config struct {
	RemoteURL          string
	TokenID            string
	Token              string
	InsecureSkipVerify bool
}

// New builds a Client following the header/auth conventions of the original
// Wings remote client: bearer auth of the form "<token_id>.<token>", a
// versioned User-Agent, and the vendor Accept header.
func New(cfg Config) *Client {
	transport := http.DefaultTransport
	if cfg.InsecureSkipVerify {
		transport = insecureTransport()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   requestTimeout,
			Transport: transport,
		},
		baseURL: strings.TrimRight(cfg.RemoteURL, "/") + "/api/remote",
		tokenID: cfg.TokenID,
		token:   cfg.Token,
	}
}

// NotFoundError is returned by single-resource fetches on an HTTP 404.
type NotFoundError struct{ Resource string }

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s not found", e.Resource) }

// ErrUnauthorized is returned when the remote rejects the daemon's credentials.
var ErrUnauthorized = fmt.Errorf("remote: unauthorized")

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("client: encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}

	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s.%s", c.tokenID, c.token))
	req.Header.Set("User-Agent", fmt.Sprintf("nodecored/v%s (id:%s)", Version, c.tokenID))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", method, path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return nil, ErrUnauthorized
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return resp, &NotFoundError{Resource: path}
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resp, fmt.Errorf("client: %s %s: status %d: %s", method, path, resp.StatusCode, string(data))
	}

	if out != nil {
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp, fmt.Errorf("client: decode response: %w", err)
		}
	}

	return resp, nil
}
