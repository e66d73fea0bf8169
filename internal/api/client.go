package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"entervio-client/internal/metrics"
	"entervio-client/internal/observability"
	"entervio-client/internal/storage"
)

// BasePath is the versioned prefix of every backend endpoint.
const BasePath = "/api/v1"

// RequestIDHeader carries the request id to the backend.
const RequestIDHeader = "X-Request-ID"

// Error is a non-2xx answer from the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// Options configures a Client. Only BaseURL is required.
type Options struct {
	BaseURL    string // backend origin, e.g. http://localhost:8000
	HTTPClient *http.Client
	Tokens     storage.TokenReader
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	// TempDir receives downloaded audio; defaults to os.TempDir().
	TempDir string
}

// Client talks to the Entervio backend.
type Client struct {
	baseURL string
	client  *http.Client
	tokens  storage.TokenReader
	metrics *metrics.Metrics
	log     *slog.Logger
	tempDir string
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = observability.Logger()
	}
	tempDir := opts.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/") + BasePath,
		client:  httpClient,
		tokens:  opts.Tokens,
		metrics: opts.Metrics,
		log:     logger.With("component", "api"),
		tempDir: tempDir,
	}
}

// newRequest builds a request against the API base path and attaches the
// bearer token when local storage has one.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := newTaggedRequest(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.tokens != nil {
		if token, ok := c.tokens.GetItem(storage.AccessTokenKey); ok && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// newTaggedRequest builds a request carrying the request id of ctx, minting
// a new one when ctx has none.
func newTaggedRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	reqID := observability.RequestID(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
		ctx = observability.WithRequestID(ctx, reqID)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set(RequestIDHeader, reqID)
	return req, nil
}

// do executes req and returns the body of a 2xx answer. failure builds the
// error message for any other status.
func (c *Client) do(req *http.Request, failure func(status int) string) ([]byte, error) {
	log := observability.RequestLogger(req.Context(), c.log)
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.IncrementAPICall(false)
		log.Warn("request failed", "method", req.Method, "path", req.URL.Path, "error", err)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.IncrementAPICall(false)
		return nil, fmt.Errorf("reading response: %w", err)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	c.metrics.IncrementAPICall(ok)
	log.Debug("request done",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if !ok {
		return body, &Error{Status: resp.StatusCode, Message: failure(resp.StatusCode)}
	}
	return body, nil
}

func failedTo(op string) func(int) string {
	return func(status int) string {
		return fmt.Sprintf("Failed to %s: %d", op, status)
	}
}

func (c *Client) getJSON(ctx context.Context, path string, failure func(int) string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	body, err := c.do(req, failure)
	if err != nil {
		return err
	}
	return decode(body, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in any, failure func(int) string, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	respBody, err := c.do(req, failure)
	if err != nil {
		return err
	}
	return decode(respBody, out)
}

func decode(body []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
