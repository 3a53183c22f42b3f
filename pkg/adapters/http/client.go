package http

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

	"github.com/aretw0/waypoint/pkg/domain"
)

// APIError is a non-2xx response from a session server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client talks to a session server.
type Client struct {
	base string
	http *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateSession starts a new session at the initial state.
func (c *Client) CreateSession(ctx context.Context) (*SessionResponse, error) {
	var out SessionResponse
	return &out, c.do(ctx, http.MethodPost, "/sessions", nil, &out)
}

// Session fetches the current snapshot of id.
func (c *Client) Session(ctx context.Context, id string) (*SessionResponse, error) {
	var out SessionResponse
	return &out, c.do(ctx, http.MethodGet, "/sessions/"+url.PathEscape(id), nil, &out)
}

// DeleteSession stops id.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/sessions/"+url.PathEscape(id), nil, nil)
}

// Send delivers an external event to id.
func (c *Client) Send(ctx context.Context, id string, ev domain.Event) (*SessionResponse, error) {
	var out SessionResponse
	body := EventRequest{Name: ev.Name, Payload: ev.Payload}
	return &out, c.do(ctx, http.MethodPost, "/sessions/"+url.PathEscape(id)+"/events", body, &out)
}

// Resolve completes the pending invocation src of id with data.
func (c *Client) Resolve(ctx context.Context, id, src string, data any) (*SessionResponse, error) {
	var out SessionResponse
	return &out, c.do(ctx, http.MethodPost, c.invocationPath(id, src, "resolve"), ResolveRequest{Data: data}, &out)
}

// Reject fails the pending invocation src of id with msg.
func (c *Client) Reject(ctx context.Context, id, src, msg string) (*SessionResponse, error) {
	var out SessionResponse
	return &out, c.do(ctx, http.MethodPost, c.invocationPath(id, src, "reject"), RejectRequest{Error: msg}, &out)
}

// Definition fetches the hosted workflow summary.
func (c *Client) Definition(ctx context.Context) (*DefinitionResponse, error) {
	var out DefinitionResponse
	return &out, c.do(ctx, http.MethodGet, "/definition", nil, &out)
}

func (c *Client) invocationPath(id, src, verb string) string {
	return "/sessions/" + url.PathEscape(id) + "/invocations/" + url.PathEscape(src) + "/" + verb
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e errorResponse
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(data))
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
