package solo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// API is the narrow request/response contract the sync engine and deadline
// scanner depend on. *Client implements it; tests provide fakes.
type API interface {
	FetchSnapshot(ctx context.Context) (*Snapshot, error)
	Ping(ctx context.Context) error
	Post(ctx context.Context, endpoint string, payload any) (MutationResult, error)
	FetchShop(ctx context.Context) ([]ShopItem, error)
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// ErrOffline wraps transport failures so callers can tell "no response"
// apart from a server error status.
var ErrOffline = errors.New("backend offline")

// Client talks to the solo HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

// ClientOptions tune the HTTP client. Zero values use defaults.
type ClientOptions struct {
	Transport http.RoundTripper
	Timeout   time.Duration
}

const (
	defaultServer    = "127.0.0.1:8000"
	defaultUserAgent = "solo/0.1"
	requestTimeout   = 8 * time.Second
	maxErrorBody     = 64 * 1024
)

// NewClient builds a Client for the server address, which may be a bare
// host:port or a full URL.
func NewClient(server string, opts ClientOptions) (*Client, error) {
	base, err := parseBaseURL(server)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = requestTimeout
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout:   timeout,
			Transport: opts.Transport,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalized server origin.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// FetchSnapshot retrieves the full application state.
func (c *Client) FetchSnapshot(ctx context.Context) (*Snapshot, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload DataResponse
	if err := c.do(ctx, http.MethodGet, "/api/data", nil, &payload); err != nil {
		return nil, err
	}
	return &payload.Data, nil
}

// Ping sends the liveness ping. The response body is ignored.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.do(ctx, http.MethodPost, "/api/ping", struct{}{}, nil)
}

// FetchShop retrieves the shop catalog independently of the snapshot.
func (c *Client) FetchShop(ctx context.Context) ([]ShopItem, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload ShopResponse
	if err := c.do(ctx, http.MethodGet, "/api/shop", nil, &payload); err != nil {
		return nil, err
	}
	if len(payload.Catalog) == 0 {
		return payload.Shop.Catalog, nil
	}
	return payload.Catalog, nil
}

// Post sends one mutation to /api<endpoint>. Only transport failures are
// returned as errors; error statuses are reported through the result, with
// the structured error message when the server provides one.
func (c *Client) Post(ctx context.Context, endpoint string, payload any) (MutationResult, error) {
	if c == nil {
		return MutationResult{}, fmt.Errorf("client is nil")
	}
	if payload == nil {
		payload = struct{}{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return MutationResult{}, fmt.Errorf("encode payload: %w", err)
	}
	rel := &url.URL{Path: "/api" + ensureLeadingSlash(endpoint)}
	req, err := c.newRequest(ctx, http.MethodPost, rel, bytes.NewReader(body))
	if err != nil {
		return MutationResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return MutationResult{}, fmt.Errorf("%w: %v", ErrOffline, err)
	}
	defer func() { _ = resp.Body.Close() }()

	result := MutationResult{Status: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return result, nil
	}
	var decoded struct {
		Error json.RawMessage `json:"error"`
	}
	// Non-structured failures stay silent; the resync shows the outcome.
	if json.Unmarshal(raw, &decoded) == nil && len(decoded.Error) > 0 {
		result.Error = errorText(decoded.Error)
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any, dest any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := c.newRequest(ctx, method, &url.URL{Path: path}, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: execute request: %v", ErrOffline, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", path, resp.StatusCode)
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method string, rel *url.URL, body io.Reader) (*http.Request, error) {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

func errorText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	if string(raw) == "null" {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func ensureLeadingSlash(p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}

// ParseServer normalizes a server address the way NewClient does.
func ParseServer(server string) (*url.URL, error) {
	return parseBaseURL(server)
}

func parseBaseURL(server string) (*url.URL, error) {
	trimmed := strings.TrimSpace(server)
	if trimmed == "" {
		trimmed = defaultServer
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server %q: %w", server, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
