package codeleap

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
	"github.com/rs/zerolog/log"
)

const (
	// DefaultBaseURL is the public careers endpoint for posts
	DefaultBaseURL = "https://dev.codeleap.co.uk/careers/"

	userAgent = "codeleap-network-client"

	// maxErrorBody caps how much of a failed response is kept on the error
	maxErrorBody = 4096
)

type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Client issues requests against a base URL and decodes JSON responses.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
}

// NewClient creates a Client. The base URL always ends with a slash so that
// relative paths like "5/" resolve below it.
func NewClient(cfg ClientConfig) (*Client, error) {
	raw := cfg.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}

	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", cfg.BaseURL)
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    base,
	}, nil
}

// BaseURL returns the resolved base endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Get fetches path with the given query parameters and decodes the body into out.
func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, out)
}

// Post sends body as JSON to path and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Patch sends body as JSON to path and decodes the response into out.
func (c *Client) Patch(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

// Delete removes the resource at path. Any response body is discarded.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) resolve(path string, params url.Values) *url.URL {
	u := c.baseURL.ResolveReference(&url.URL{Path: strings.TrimPrefix(path, "/")})
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body any, out any) error {
	target := c.resolve(path, params)
	op := fmt.Sprintf("%s %s", method, target.Path)

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &RequestError{Op: op, Method: method, URL: target.String(), Err: fmt.Errorf("failed to encode request body: %w", err)}
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reqBody)
	if err != nil {
		return &RequestError{Op: op, Method: method, URL: target.String(), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return handleAPIError(op, method, target, nil, nil, err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("method", method).
		Str("url", target.String()).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("CodeLeap API request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return handleAPIError(op, method, target, resp, errBody, nil)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &RequestError{
			Op:         op,
			Method:     method,
			URL:        target.String(),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to decode response: %w", err),
		}
	}

	return nil
}

// handleAPIError builds a RequestError from either a transport failure or a non-2xx response.
func handleAPIError(op, method string, target *url.URL, resp *http.Response, body []byte, err error) error {
	reqErr := &RequestError{
		Op:     op,
		Method: method,
		URL:    target.String(),
		Body:   string(body),
		Err:    err,
	}
	if resp != nil {
		reqErr.StatusCode = resp.StatusCode
	}
	return reqErr
}
