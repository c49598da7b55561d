// Package api provides the HTTP client for the Ringlify backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/ringlify/ringlify-cli/internal/config"
	"github.com/ringlify/ringlify-cli/internal/observability"
	"github.com/ringlify/ringlify-cli/internal/output"
	"github.com/ringlify/ringlify-cli/internal/version"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 10 << 20

// ErrUnauthorized is the cause attached when the backend rejects a session token.
var ErrUnauthorized = errors.New("session rejected by server")

// Client sends JSON requests to the backend. The Authorizer decides which
// credential, if any, goes in the Authorization header.
type Client struct {
	baseURL    string
	auth       Authorizer
	httpClient *http.Client
	timeout    time.Duration
	hooks      observability.Hooks
	logger     *zap.Logger
}

// Request describes one API call.
type Request struct {
	Method string // defaults to GET
	Path   string // relative to the base URL, e.g. "/admin/businesses"
	Query  *Query
	Body   any
	Header http.Header
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every request. Zero means no client-side limit.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithHooks installs request lifecycle hooks.
func WithHooks(h observability.Hooks) Option {
	return func(c *Client) {
		if h != nil {
			c.hooks = h
		}
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for baseURL. A nil auth sends no credentials.
func NewClient(baseURL string, auth Authorizer, opts ...Option) *Client {
	if auth == nil {
		auth = Anonymous()
	}
	c := &Client{
		baseURL: config.NormalizeBaseURL(baseURL),
		auth:    auth,
		hooks:   observability.NoopHooks{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WithAuthorizer returns a copy of c that authorizes requests with a.
func (c *Client) WithAuthorizer(a Authorizer) *Client {
	cp := *c
	if a == nil {
		a = Anonymous()
	}
	cp.auth = a
	return &cp
}

// Get performs a GET request and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, q *Query, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: q}, out)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}

// Do sends req and decodes a successful JSON response into out.
//
// A 204 response leaves out untouched. A non-2xx response becomes an
// *output.Error carrying the backend's message. A 401 on a session-token
// client clears the session before returning.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	url := c.buildURL(req.Path, req.Query)

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("failed to marshal body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	info := observability.RequestInfo{Method: method, URL: url, RequestID: uuid.NewString()}
	ctx = c.hooks.OnRequestStart(ctx, info)

	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return output.ErrUsage(fmt.Sprintf("Invalid request URL: %v", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", version.UserAgent())
	httpReq.Header.Set("X-Request-ID", info.RequestID)
	for k, vs := range req.Header {
		httpReq.Header.Del(k)
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if cred, ok := c.auth.Authorization(ctx); ok && cred != "" {
		httpReq.Header.Set("Authorization", "Bearer "+cred)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		err = transportError(ctx, err)
		c.finish(ctx, info, req.Path, observability.RequestResult{Duration: time.Since(start), Error: err})
		return err
	}
	defer resp.Body.Close()

	err = c.handleResponse(ctx, resp, out)
	c.finish(ctx, info, req.Path, observability.RequestResult{
		StatusCode: resp.StatusCode,
		Duration:   time.Since(start),
		Error:      err,
	})
	return err
}

func (c *Client) finish(ctx context.Context, info observability.RequestInfo, path string, result observability.RequestResult) {
	c.hooks.OnRequestEnd(ctx, info, result)
	fields := []zap.Field{
		zap.String("method", info.Method),
		zap.String("path", path),
		zap.Int("status", result.StatusCode),
		zap.Duration("duration", result.Duration),
		zap.String("request_id", info.RequestID),
	}
	if result.Error != nil {
		fields = append(fields, zap.Error(result.Error))
	}
	c.logger.Debug("api request", fields...)
}

func (c *Client) handleResponse(ctx context.Context, resp *http.Response, out any) error {
	status := resp.StatusCode

	if status == http.StatusUnauthorized {
		if inv, ok := c.auth.(Invalidator); ok {
			inv.Invalidate(ctx, ErrUnauthorized)
			return output.ErrUnauthorized(ErrUnauthorized)
		}
	}

	if status == http.StatusNoContent {
		return nil
	}

	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))

	if status < 200 || status > 299 {
		return apiError(resp, data)
	}

	if out == nil {
		return nil
	}
	if readErr != nil {
		if ctx.Err() != nil {
			return transportError(ctx, readErr)
		}
		return output.ErrMalformed(status, readErr)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return output.ErrMalformed(status, err)
	}
	return nil
}

// errorBody is the backend's error shape.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// apiError converts a non-2xx response into an *output.Error.
// An undecodable body yields "HTTP <status>: <statusText>"; a decoded body
// without a message yields "Request failed".
func apiError(resp *http.Response, data []byte) *output.Error {
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		body = errorBody{
			Error:   "Request failed",
			Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, statusText(resp)),
		}
	}
	msg := body.Message
	if msg == "" {
		msg = "Request failed"
	}

	e := output.ErrAPI(resp.StatusCode, msg)
	switch resp.StatusCode {
	case http.StatusNotFound:
		e.Code = output.CodeNotFound
	case http.StatusForbidden:
		e.Code = output.CodeForbidden
	}
	return e
}

// statusText returns the reason phrase the server sent, or the standard one.
func statusText(resp *http.Response) string {
	if text, ok := strings.CutPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); ok && text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

func transportError(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) && !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return output.ErrTimeout(err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return output.ErrTimeout(err)
	}
	return output.ErrNetwork(err)
}

func (c *Client) buildURL(path string, q *Query) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	url := c.baseURL + path
	if enc := q.Encode(); enc != "" {
		url += "?" + enc
	}
	return url
}
