// Package client is the Go SDK for the CaseLaw-Intelligence HTTP API.
//
// A Client is safe for concurrent use:
//
//	cl, err := client.New("http://localhost:8080",
//		client.WithTimeout(10*time.Second),
//		client.WithAPIKey("secret"))
//	if err != nil { ... }
//	rec, err := cl.GetCase(ctx, "case-001")
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/types"
)

// Version is reported in the default User-Agent header.
const Version = "0.1.0"

const (
	defaultTimeout = 30 * time.Second
	apiKeyHeader   = "X-API-Key"
)

// Client talks to one CaseLaw-Intelligence API server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	userAgent  string
}

// New builds a client for the given base URL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.InvalidParam("base URL must not be empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid base URL")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  "caselaw-client/" + Version,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Ready calls GET /readyz and returns the dependency report.  The report is
// returned even when the server answers 503 so callers can inspect which
// component is down.
func (c *Client) Ready(ctx context.Context) (*types.HealthReport, error) {
	resp, err := c.do(ctx, "/readyz", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var report types.HealthReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "decode readiness report")
	}
	return &report, nil
}

// do issues one GET request with the client headers applied.
func (c *Client) do(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "request failed")
	}
	return resp, nil
}

// getEnvelope issues a GET and unwraps the response envelope, converting an
// error body back into an *errors.AppError with its original code.
func getEnvelope[T any](ctx context.Context, c *Client, path string, query url.Values) (T, *types.Page, error) {
	var zero T

	resp, err := c.do(ctx, path, query)
	if err != nil {
		return zero, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return zero, nil, errors.Wrap(err, errors.ErrCodeExternalService, "read response")
	}

	var env types.Envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return zero, nil, errors.Newf(errors.ErrCodeExternalService,
				"server returned status %d", resp.StatusCode)
		}
		return zero, nil, errors.Wrap(err, errors.ErrCodeSerialization, "decode response envelope")
	}

	if env.Error != nil {
		appErr := &errors.AppError{
			Code:    errors.ErrorCode(env.Error.Code),
			Message: env.Error.Message,
			Detail:  env.Error.Detail,
		}
		return zero, nil, appErr
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return zero, nil, errors.Newf(errors.ErrCodeExternalService,
			"server returned status %d", resp.StatusCode)
	}
	return env.Data, env.Meta, nil
}

// pathEscape escapes one path segment, keeping statute references with
// spaces and parentheses routable.
func pathEscape(segment string) string {
	return url.PathEscape(segment)
}

// itoa renders a positive int query value, omitting non-positive ones.
func setIntQuery(q url.Values, key string, value int) {
	if value > 0 {
		q.Set(key, fmt.Sprintf("%d", value))
	}
}
