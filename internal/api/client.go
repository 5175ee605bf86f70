// Package api implements tasklist.Backend over the remote task collection
// REST API.
package api

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

	"github.com/charmbracelet/log"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"tasklist/internal/tasklist"
)

const (
	// DefaultBaseURL is where the reference server listens.
	DefaultBaseURL = "http://127.0.0.1:8000/api"

	// maxBodySize caps how much of a response is read.
	maxBodySize = 4 << 20
)

// ErrMalformedResponse is returned when a 2xx body is not a valid task payload.
var ErrMalformedResponse = errors.New("malformed response")

// StatusError reports a non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
}

var _ tasklist.Backend = (*Client)(nil)

// Client talks to the task collection API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each request. Zero leaves the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger requests are reported to.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: http.DefaultClient,
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// List implements tasklist.Backend.
func (c *Client) List(ctx context.Context) ([]tasklist.Task, error) {
	var tasks []tasklist.Task
	if err := c.do(ctx, http.MethodGet, "/todos/", nil, schemas.tasks, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

type createRequest struct {
	Title  string `json:"title"`
	Status bool   `json:"status"`
}

// Create implements tasklist.Backend.
func (c *Client) Create(ctx context.Context, title string) (tasklist.Task, error) {
	var t tasklist.Task
	body := createRequest{Title: title, Status: false}
	if err := c.do(ctx, http.MethodPost, "/todos/create/", body, schemas.task, &t); err != nil {
		return tasklist.Task{}, err
	}
	return t, nil
}

// Update implements tasklist.Backend.
func (c *Client) Update(ctx context.Context, t tasklist.Task) (tasklist.Task, error) {
	if t.ID == "" {
		return tasklist.Task{}, errors.New("update: task has no id")
	}
	var out tasklist.Task
	path := "/todos/" + url.PathEscape(t.ID.String()) + "/update/"
	if err := c.do(ctx, http.MethodPut, path, t, schemas.task, &out); err != nil {
		return tasklist.Task{}, err
	}
	return out, nil
}

// Delete implements tasklist.Backend.
func (c *Client) Delete(ctx context.Context, id tasklist.ID) error {
	if id == "" {
		return errors.New("delete: empty id")
	}
	path := "/todos/" + url.PathEscape(id.String()) + "/delete/"
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in any, schema *jsonschema.Schema, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("request failed", "method", method, "path", path, "err", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("unexpected status", "method", method, "path", path, "status", resp.StatusCode, "body", string(data))
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(data)}
	}
	if out == nil {
		return nil
	}
	if err := validate(schema, data); err != nil {
		c.logger.Error("invalid response", "method", method, "path", path, "err", err)
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
