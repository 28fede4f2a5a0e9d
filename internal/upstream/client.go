// Package upstream contains the typed HTTP clients the gateway uses to reach
// the students and exams services.
//
// Both clients implement the same tiny interface, Fetcher, so the gateway
// can be tested against plain functions instead of HTTP servers. Clients do
// not retry: resilience belongs to the circuit breaker wrapped around them.
package upstream

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

	"github.com/aanand-mishra/university-api/internal/http/middleware"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// Fetcher fetches a T identified by parameters P.
type Fetcher[P, T any] interface {
	Fetch(ctx context.Context, params P) (T, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc[P, T any] func(ctx context.Context, params P) (T, error)

func (f FetcherFunc[P, T]) Fetch(ctx context.Context, params P) (T, error) {
	return f(ctx, params)
}

// NewHTTPClient returns the *http.Client shared by the upstream clients.
// timeout bounds a whole request, from dialing to reading the last byte.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// client is the transport shared by the typed clients.
type client struct {
	service string
	baseURL string
	http    *http.Client
}

func newClient(service, baseURL string, httpClient *http.Client) client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return client{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// getJSON performs GET baseURL+path?query and decodes the JSON body into
// out. Every failure is returned as *Error.
func (c client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return c.fail(0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if id := middleware.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderRequestID, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(0, fmt.Errorf("http request: %w", err))
	}
	defer resp.Body.Close()

	body := io.LimitReader(resp.Body, maxBodyBytes)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(resp.StatusCode, errors.New(errorMessage(body, resp.Status)))
	}

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return c.fail(0, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c client) fail(status int, err error) *Error {
	return &Error{Service: c.service, StatusCode: status, Err: err}
}

// errorMessage extracts the "error" field of a JSON error envelope, falling
// back to the HTTP status text.
func errorMessage(body io.Reader, status string) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return status
}
