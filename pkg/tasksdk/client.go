package tasksdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the public endpoints of a TaskSetu server.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a client with a 10s timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Session is a Client bound to a session token. Organization endpoints act
// on the caller's own tenant unless ForTenant selects another one, which
// only super admins may do.
type Session struct {
	client   *Client
	token    string
	tenantID string
}

// WithToken builds a session from an existing token.
func (c *Client) WithToken(token string) *Session {
	return &Session{client: c, token: token}
}

// Token returns the bearer token used by s.
func (s *Session) Token() string { return s.token }

// ForTenant returns a copy of s that addresses tenantID.
func (s *Session) ForTenant(tenantID string) *Session {
	cp := *s
	cp.tenantID = tenantID
	return &cp
}

func (c *Client) do(ctx context.Context, method, path string, in any, headers map[string]string) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

func (s *Session) do(ctx context.Context, method, path string, in any) (*http.Response, error) {
	if s.tenantID != "" {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		path += sep + "tenant_id=" + url.QueryEscape(s.tenantID)
	}
	return s.client.do(ctx, method, path, in, map[string]string{"Authorization": "Bearer " + s.token})
}

// decodeJSON reads resp and decodes it into out when the status matches.
// out may be nil to discard the body.
func decodeJSON(resp *http.Response, out any, expectedStatus int) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func call[T any](ctx context.Context, do func(context.Context, string, string, any) (*http.Response, error), method, path string, in any, status int) (*T, error) {
	resp, err := do(ctx, method, path, in)
	if err != nil {
		return nil, err
	}
	var out T
	if err := decodeJSON(resp, &out, status); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doPublic(ctx context.Context, method, path string, in any) (*http.Response, error) {
	return c.do(ctx, method, path, in, nil)
}
