package graph

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

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://graph.facebook.com"
	DefaultVersion = "v19.0"

	codeSessionExpired = 190
)

// Client is a thin wrapper over the Meta Graph API shared by the
// Instagram and Facebook publish adapters and the insights handlers.
type Client struct {
	baseURL string
	version string
	client  *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL, version string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if version == "" {
		version = DefaultVersion
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		version: version,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// APIError is the vendor's JSON error envelope payload.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
	Subcode int    `json:"error_subcode"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph API error: %s (code %d)", e.Message, e.Code)
}

// ReconnectError marks an expired session (vendor code 190); the route
// layer turns it into a 401 asking the user to reconnect the account.
type ReconnectError struct {
	apiErr *APIError
}

func (e *ReconnectError) Error() string {
	return fmt.Sprintf("session expired, please reconnect the account: %s", e.apiErr.Message)
}

func (e *ReconnectError) Unwrap() error {
	return e.apiErr
}

// IsReconnect reports whether err carries an expired-session Graph error.
func IsReconnect(err error) bool {
	var reconnectErr *ReconnectError
	return errors.As(err, &reconnectErr)
}

type errorEnvelope struct {
	Error *APIError `json:"error"`
}

func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, out)
}

func (c *Client) PostForm(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodPost, path, params, out)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, out any) error {
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, c.version, strings.TrimPrefix(path, "/"))

	var req *http.Request
	var err error
	if method == http.MethodGet {
		if len(params) > 0 {
			endpoint += "?" + params.Encode()
		}
		req, err = http.NewRequestWithContext(ctx, method, endpoint, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, strings.NewReader(params.Encode()))
		if req != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	// The vendor reports failures through a JSON error envelope; check it
	// before the status code so its human-readable message survives.
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		if envelope.Error.Code == codeSessionExpired {
			return &ReconnectError{apiErr: envelope.Error}
		}
		return envelope.Error
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("graph API returned status %d: %s", resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
