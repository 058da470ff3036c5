// Package api is the HTTP adapter for the wallet backend. One shared client,
// one method per backend operation, JSON payloads passed through verbatim.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ehuza/internal/session"
	"ehuza/internal/wallet"
)

const defaultTimeout = 15 * time.Second

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the wallet backend. Every outgoing request passes through
// a bearer transport that attaches the session token when one is present in
// the request context; requests without a session go out unmodified.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ wallet.Backend = (*Client)(nil)

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &bearerTransport{base: http.DefaultTransport},
		},
	}
}

// bearerTransport injects Authorization: Bearer <token> sourced from the
// session context. It is the only place the credential touches the wire.
type bearerTransport struct {
	base http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if token, ok := session.TokenFromContext(req.Context()); ok {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return t.base.RoundTrip(req)
}

// doJSON issues a request with an optional JSON body and decodes the JSON
// response into out. Non-2xx responses become *wallet.APIError carrying the
// server's message body; they are never retried.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	slog.DebugContext(req.Context(), "Backend call completed",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func apiError(status int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)
	return &wallet.APIError{StatusCode: status, Message: payload.Message}
}
