// Package apiclient provides the HTTP client that API tests use: a thin set
// of verb methods over a retrying session bound to a base URL.
//
// The retry policy is delegated to hashicorp/go-retryablehttp rather than
// implemented here: up to 3 retries on statuses 429, 500, 502, 503 and 504
// for every verb, with exponential backoff starting at one second. Each
// request has a fixed 30-second budget.
//
// The client never judges response statuses. A 404 is returned to the caller
// as a response, not an error; only transport failures, timeouts and
// exhausted retries come back as errors.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/testhive/app-test-harness/framework"
	"github.com/testhive/app-test-harness/framework/helpers"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultRetryWaitMin = 1 * time.Second
	defaultRetryWaitMax = 30 * time.Second
	maxRetries          = 3
)

// ErrRequestTimeout is wrapped by errors returned when a request exceeded its
// time budget or used up all of its retries without a non-retryable response.
var ErrRequestTimeout = errors.New("request timed out or exhausted retries")

// retriesExhaustedError is produced by the retry transport's ErrorHandler
// when every attempt has been used, so exhaustion is detected by type rather
// than by the library's message text.
type retriesExhaustedError struct {
	attempts int
	cause    error
}

func (e *retriesExhaustedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("request failed after %d attempts: %s", e.attempts, e.cause)
	}
	return fmt.Sprintf("request failed after %d attempts", e.attempts)
}

func (e *retriesExhaustedError) Unwrap() error { return e.cause }

var retryStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Client is an HTTP client bound to a base URL.
type Client struct {
	baseURL    string
	logger     framework.Logger
	httpClient *http.Client
	closeOnce  sync.Once
}

type clientConfig struct {
	timeout      time.Duration
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	logger       framework.Logger
}

// ClientOption is the interface for options passed to New.
type ClientOption helpers.ConfigOption[clientConfig]

type clientOptionTimeout struct{ timeout time.Duration }

func (o clientOptionTimeout) Configure(c *clientConfig) error {
	c.timeout = o.timeout
	return nil
}

// WithTimeout overrides the default 30-second per-request budget.
func WithTimeout(timeout time.Duration) ClientOption {
	return clientOptionTimeout{timeout}
}

type clientOptionRetryWait struct{ min, max time.Duration }

func (o clientOptionRetryWait) Configure(c *clientConfig) error {
	c.retryWaitMin, c.retryWaitMax = o.min, o.max
	return nil
}

// WithRetryWait overrides the backoff bounds. Tests use this to avoid
// real-time waits.
func WithRetryWait(min, max time.Duration) ClientOption {
	return clientOptionRetryWait{min, max}
}

type clientOptionLogger struct{ logger framework.Logger }

func (o clientOptionLogger) Configure(c *clientConfig) error {
	c.logger = o.logger
	return nil
}

// WithLogger directs the client's request logging somewhere other than the
// null logger.
func WithLogger(logger framework.Logger) ClientOption {
	return clientOptionLogger{logger}
}

// New creates a Client for the given base URL.
func New(baseURL string, options ...ClientOption) (*Client, error) {
	cc := clientConfig{
		timeout:      defaultTimeout,
		retryWaitMin: defaultRetryWaitMin,
		retryWaitMax: defaultRetryWaitMax,
		logger:       framework.NullLogger(),
	}
	if err := helpers.ApplyOptions(&cc, options...); err != nil {
		return nil, err
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = maxRetries
	rc.RetryWaitMin = cc.retryWaitMin
	rc.RetryWaitMax = cc.retryWaitMax
	rc.CheckRetry = checkRetry
	rc.Logger = nil // the client logs each call itself
	rc.HTTPClient.Timeout = cc.timeout
	rc.ErrorHandler = func(resp *http.Response, err error, attempts int) (*http.Response, error) {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return nil, &retriesExhaustedError{attempts: attempts, cause: err}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     cc.logger,
		httpClient: rc.StandardClient(),
	}, nil
}

func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	return resp != nil && retryStatuses[resp.StatusCode], nil
}

// Get sends a GET request to the endpoint.
func (c *Client) Get(endpoint string) (*http.Response, error) {
	return c.do(http.MethodGet, endpoint, nil)
}

// Post sends a POST request. A non-nil body is serialized as JSON; nil means
// no body.
func (c *Client) Post(endpoint string, body interface{}) (*http.Response, error) {
	return c.do(http.MethodPost, endpoint, body)
}

// Put sends a PUT request; body semantics are the same as Post.
func (c *Client) Put(endpoint string, body interface{}) (*http.Response, error) {
	return c.do(http.MethodPut, endpoint, body)
}

// Patch sends a PATCH request; body semantics are the same as Post.
func (c *Client) Patch(endpoint string, body interface{}) (*http.Response, error) {
	return c.do(http.MethodPatch, endpoint, body)
}

// Delete sends a DELETE request to the endpoint.
func (c *Client) Delete(endpoint string) (*http.Response, error) {
	return c.do(http.MethodDelete, endpoint, nil)
}

// ResolveURL joins an endpoint path to the base URL, normalizing slashes so
// "users" and "/users" refer to the same resource.
func (c *Client) ResolveURL(endpoint string) string {
	return c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}

func (c *Client) do(method, endpoint string, body interface{}) (*http.Response, error) {
	url := c.ResolveURL(endpoint)
	c.logger.Printf("%s %s", method, url)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("cannot serialize request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(method, url, err)
	}
	return resp, nil
}

func (c *Client) transportError(method, url string, err error) error {
	if isTimeout(err) || isRetriesExhausted(err) {
		return fmt.Errorf("%w: %s %s: %v", ErrRequestTimeout, method, url, err)
	}
	return err
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isRetriesExhausted(err error) bool {
	var exhausted *retriesExhaustedError
	return errors.As(err, &exhausted)
}

// Close releases the underlying session. It is safe to call more than once;
// only the first call has any effect.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.httpClient.CloseIdleConnections()
		c.logger.Printf("API client closed")
	})
}
