// Package backendsvc is the HTTP client for the UPT-PIK backend REST API,
// the external collaborator owning all business rules and persistence.
package backendsvc

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

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/uptpik/pikweb/core"
)

type (
	Client struct {
		baseURL string
		http    *http.Client
		limiter *rate.Limiter
		token   string
	}

	// APIError is a backend-rejected request carrying the server-provided
	// message when one exists.
	APIError struct {
		Status  int
		Message string
	}

	// Pagination mirrors the backend's list envelope metadata.
	Pagination struct {
		Page       int `json:"page"`
		Limit      int `json:"limit"`
		Total      int `json:"total"`
		TotalPages int `json:"totalPages"`
	}

	// envelope is the backend's uniform response shape.
	envelope struct {
		Data       json.RawMessage `json:"data"`
		Pagination *Pagination     `json:"pagination,omitempty"`
		Message    string          `json:"message,omitempty"`
	}
)

func (e *APIError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Message)
}

// APIMessage exposes the server message to callers that only care about the
// human-readable text (core/session relies on this).
func (e *APIError) APIMessage() string { return e.Message }

// IsAuth reports whether the error means the token is stale or insufficient.
func (e *APIError) IsAuth() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// NewClient builds a client from configuration.
func NewClient() *Client {
	return NewClientWith(
		core.Conf.GetString("backendBaseURL"),
		core.Conf.GetDuration("backendTimeout"),
		core.Conf.GetInt("backendRateLimit"),
	)
}

func NewClientWith(baseURL string, timeout time.Duration, rps int) *Client {
	if rps <= 0 {
		rps = 20
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// WithToken returns a shallow copy of the client that authenticates requests
// with the given bearer token. The transport and limiter are shared.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) (*Pagination, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "awaiting rate limiter")
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, errors.Wrap(err, "encoding request body")
		}
		body = bytes.NewReader(data)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	//goland:noinspection GoUnhandledErrorResult
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response body")
	}

	var env envelope
	if len(data) > 0 {
		// a non-JSON body (proxy error pages etc.) falls through with an
		// empty envelope
		_ = json.Unmarshal(data, &env)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &APIError{Status: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, errors.Wrap(err, "decoding response data")
		}
	}
	return env.Pagination, nil
}
