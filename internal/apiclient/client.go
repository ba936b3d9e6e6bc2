// Package apiclient sends requests to the exam platform API with bearer
// authentication and recovers once from an expired access token.
package apiclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/examshare/examshare-client/internal/credentials"
	"github.com/examshare/examshare-client/internal/logger"
	"github.com/examshare/examshare-client/internal/metrics"
	"github.com/examshare/examshare-client/internal/model"
	"github.com/examshare/examshare-client/internal/navigation"
)

const (
	DefaultLoginPath   = "/login"
	DefaultRefreshPath = "/token/refresh/"
)

// Doer sends HTTP requests. *http.Client satisfies it; use NewTransport to
// build one that honours WithoutRedirects.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the authenticated API client. It is safe for concurrent use.
//
// A request answered with 401 is replayed at most once, after exchanging the
// stored refresh token for a new access token. Concurrent 401s each refresh
// on their own unless WithRefreshCoalescing is set.
type Client struct {
	baseURL     *url.URL
	httpClient  Doer
	session     *credentials.Session
	navigator   model.Navigator
	metrics     model.MetricsRecorder
	logger      *logger.Logger
	loginPath   string
	refreshPath string
	refreshes   *singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(d Doer) Option {
	return func(c *Client) { c.httpClient = d }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithMetrics(m model.MetricsRecorder) Option {
	return func(c *Client) { c.metrics = m }
}

// WithNavigator sets where the session is sent after an unrecoverable auth failure.
func WithNavigator(n model.Navigator) Option {
	return func(c *Client) { c.navigator = n }
}

// WithLoginPath sets the redirect target passed to the navigator.
func WithLoginPath(p string) Option {
	return func(c *Client) { c.loginPath = p }
}

// WithRefreshPath sets the token refresh endpoint, relative to the base URL.
func WithRefreshPath(p string) Option {
	return func(c *Client) { c.refreshPath = p }
}

// WithRefreshCoalescing merges concurrent refreshes of the same refresh token
// into a single call to the refresh endpoint.
func WithRefreshCoalescing() Option {
	return func(c *Client) { c.refreshes = &singleflight.Group{} }
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, session *credentials.Session, opts ...Option) (*Client, error) {
	if session == nil {
		return nil, errors.New("apiclient: session is required")
	}
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("apiclient: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("apiclient: base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:     u,
		httpClient:  &http.Client{CheckRedirect: checkRedirect},
		session:     session,
		navigator:   navigation.Discard,
		metrics:     metrics.NewNoopRecorder(),
		logger:      logger.NewWithWriter(io.Discard, 0),
		loginPath:   DefaultLoginPath,
		refreshPath: DefaultRefreshPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Session returns the credential accessor the client reads tokens from.
func (c *Client) Session() *credentials.Session {
	return c.session
}

// LoginPath returns the redirect target used on unrecoverable auth failures.
func (c *Client) LoginPath() string {
	return c.loginPath
}

// Request builds and dispatches a call. body may be nil, []byte, string,
// io.Reader or any JSON-marshalable value.
func (c *Client) Request(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Response, error) {
	data, contentType, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	req := Request{Method: method, Path: path, Body: data}
	if contentType != "" {
		req.Header = http.Header{"Content-Type": []string{contentType}}
	}
	for _, opt := range opts {
		opt(&req)
	}
	return c.Do(ctx, req)
}

func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Request(ctx, http.MethodGet, path, nil, opts...)
}

func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Request(ctx, http.MethodPost, path, body, opts...)
}

func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Request(ctx, http.MethodPut, path, body, opts...)
}

func (c *Client) Patch(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Request(ctx, http.MethodPatch, path, body, opts...)
}

func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Request(ctx, http.MethodDelete, path, nil, opts...)
}

// Do dispatches req. Statuses other than 401 are returned as they are with a
// nil error. A 401 triggers one refresh-and-replay; if that cannot succeed the
// stored credentials are cleared, the navigator is redirected to the login
// path and the returned error matches model.ErrUnauthenticated.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	d := dispatch{id: uuid.New(), req: req}

	token := req.Bearer
	if token == "" && !req.Anonymous {
		stored, err := c.session.AccessToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
		}
		token = stored
	}

	resp, err := c.send(ctx, d, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || req.Bearer != "" || req.Anonymous {
		return resp, nil
	}

	return c.reauthenticate(ctx, d.replay())
}

// reauthenticate refreshes the access token and replays d exactly once.
func (c *Client) reauthenticate(ctx context.Context, d dispatch) (*Response, error) {
	log := c.logger.With("dispatch_id", d.id.String(), "method", d.req.Method, "path", d.req.Path)
	log.Debug("access token rejected, refreshing", "attempt", d.attempt)

	refresh, err := c.session.RefreshToken(ctx)
	if err != nil {
		// A store outage is not a lost session: keep the credentials.
		return nil, fmt.Errorf("%s %s: %w", d.req.Method, d.req.Path, err)
	}
	if refresh == "" {
		return nil, c.fail(ctx, d, model.ErrNoRefreshToken)
	}

	access, err := c.refresh(ctx, refresh)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s %s: refresh interrupted: %w", d.req.Method, d.req.Path, ctxErr)
		}
		c.metrics.RecordRefresh(false)
		return nil, c.fail(ctx, d, err)
	}
	c.metrics.RecordRefresh(true)

	if err := c.session.ReplaceAccess(ctx, access); err != nil {
		log.Warn("failed to persist refreshed access token", "error", err)
	}

	resp, err := c.send(ctx, d, access)
	if err != nil {
		return nil, err
	}
	c.metrics.RecordReplay(resp.StatusCode)

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, c.fail(ctx, d, model.ErrReplayUnauthorized)
	}

	log.Debug("request replayed", "attempt", d.attempt, "status", resp.StatusCode)
	return resp, nil
}

// fail handles an unrecoverable authentication failure.
func (c *Client) fail(ctx context.Context, d dispatch, cause error) error {
	c.logger.Info("authentication lost, clearing credentials",
		"dispatch_id", d.id.String(),
		"method", d.req.Method,
		"path", d.req.Path,
		"error", cause.Error())

	if err := c.session.Clear(ctx); err != nil {
		c.logger.Error("failed to clear credentials", "error", err.Error())
	}
	c.navigator.Redirect(ctx, c.loginPath)

	return fmt.Errorf("%s %s: %w: %w", d.req.Method, d.req.Path, model.ErrUnauthenticated, cause)
}

func (c *Client) send(ctx context.Context, d dispatch, token string) (*Response, error) {
	httpReq, err := newHTTPRequest(ctx, c.baseURL, d.req, token)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", d.req.Method, d.req.Path, err)
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.RecordTransportError(d.req.Method)
		c.logger.Debug("API request failed",
			"dispatch_id", d.id.String(),
			"method", d.req.Method,
			"path", d.req.Path,
			"attempt", d.attempt,
			"error", err.Error())
		return nil, fmt.Errorf("%s %s: %w", d.req.Method, d.req.Path, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.metrics.RecordTransportError(d.req.Method)
		return nil, fmt.Errorf("%s %s: read body: %w", d.req.Method, d.req.Path, err)
	}

	c.metrics.RecordRequest(d.req.Method, httpResp.StatusCode)
	c.logger.Debug("API request completed",
		"dispatch_id", d.id.String(),
		"method", d.req.Method,
		"path", d.req.Path,
		"attempt", d.attempt,
		"status", httpResp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
	}, nil
}
