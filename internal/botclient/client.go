// Package botclient issues outbound HTTP calls to the trading bot backend.
// Each call carries its operation's timeout budget; every failure is
// returned as a value, never a panic. The client performs no retries:
// start/stop/retrain are not idempotent and a blind retry could
// double-trigger side effects on the backend.
package botclient

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

	"botgate/internal/config"
	"botgate/internal/logger"
)

// RawResponse is the backend's answer, successful or not. The caller decides
// how to relay non-2xx statuses.
type RawResponse struct {
	StatusCode int
	Body       []byte
}

// Successful reports whether the backend answered with a 2xx status.
func (r *RawResponse) Successful() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON decodes the response body into v.
func (r *RawResponse) JSON(v interface{}) error {
	if len(r.Body) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// TransportError means the backend could not be reached at all: connection
// failure, timeout, or a broken response stream. Distinct from a backend
// that answered with a failure status.
type TransportError struct {
	Operation string
	Timeout   bool
	Err       error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("backend request %s timed out: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("backend request %s failed: %v", e.Operation, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError returns err as a *TransportError if it is one.
func IsTransportError(err error) (*TransportError, bool) {
	var te *TransportError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// Client forwards gateway operations to the trading bot backend.
type Client struct {
	baseURL    string
	cfg        config.BackendConfig
	httpClient *http.Client
	log        *logger.Logger
}

// New creates a backend client for the configured base URL. The http.Client
// carries no global timeout; budgets are applied per operation.
func New(cfg config.BackendConfig, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		cfg:        cfg,
		httpClient: &http.Client{},
		log:        log.WithField("component", "botclient"),
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do forwards one operation to the backend. pathParams fill the operation's
// path template, query is appended to the URL, and body (if non-nil) is sent
// as JSON. A non-2xx answer is returned as a RawResponse, not an error;
// the error return is reserved for transport failures.
func (c *Client) Do(ctx context.Context, op Operation, pathParams map[string]string, query url.Values, body interface{}) (*RawResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, op.ResolveTimeout(c.cfg))
	defer cancel()

	target := c.baseURL + op.ExpandPath(pathParams)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, c.fail(op, false, fmt.Errorf("encode request body: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, op.Method, target, reader)
	if err != nil {
		return nil, c.fail(op, false, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(op, errors.Is(err, context.DeadlineExceeded), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(op, errors.Is(err, context.DeadlineExceeded), fmt.Errorf("read response body: %w", err))
	}

	result := &RawResponse{StatusCode: resp.StatusCode, Body: raw}
	if !result.Successful() {
		c.log.WithFields(map[string]interface{}{
			"operation": op.Name,
			"status":    resp.StatusCode,
		}).Error("backend reported failure")
	}
	return result, nil
}

func (c *Client) fail(op Operation, timeout bool, err error) *TransportError {
	te := &TransportError{Operation: op.Name, Timeout: timeout, Err: err}
	c.log.WithFields(map[string]interface{}{
		"operation": op.Name,
		"timeout":   timeout,
	}).WithError(err).Error("backend request failed")
	return te
}
