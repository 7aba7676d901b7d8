package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/ourhour-lab/ourhour-go/pkg/domain/interfaces"
	"github.com/ourhour-lab/ourhour-go/pkg/domain/model"
	"github.com/ourhour-lab/ourhour-go/pkg/utils/logging"
	"github.com/ourhour-lab/ourhour-go/pkg/utils/safe"
)

const defaultTimeout = 10 * time.Second

// Client is the OurHour API client. Every request goes through the same
// pipeline: loading signal, public/protected classification, bearer token
// attachment, envelope unwrapping, and 401 refresh-and-replay coordination.
type Client struct {
	baseURL *url.URL
	httpc   *http.Client
	session *Session
	loading interfaces.LoadingSink
	refresh *refreshCoordinator

	Auth          *AuthAPI
	Notifications *NotificationAPI
	Org           *OrgAPI
}

// Option configures a Client
type Option func(*clientConfig)

type clientConfig struct {
	httpc     *http.Client
	timeout   time.Duration
	session   *Session
	loading   interfaces.LoadingSink
	onExpired func()
}

// WithHTTPClient replaces the underlying HTTP client. The caller is
// responsible for setting a cookie jar if the refresh and stream token
// endpoints are to work, since both rely on cookie-carried credentials.
func WithHTTPClient(httpc *http.Client) Option {
	return func(cfg *clientConfig) { cfg.httpc = httpc }
}

// WithTimeout sets the per-request timeout (default 10s)
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) { cfg.timeout = d }
}

// WithSession injects a shared session so the stream manager and the client
// observe the same token
func WithSession(s *Session) Option {
	return func(cfg *clientConfig) { cfg.session = s }
}

// WithLoadingSink registers the global loading indicator
func WithLoadingSink(sink interfaces.LoadingSink) Option {
	return func(cfg *clientConfig) { cfg.loading = sink }
}

// WithSessionExpiredHook registers a callback fired once per failed refresh,
// after the session has been cleared. UI owners use it to route back to the
// login entry point.
func WithSessionExpiredHook(fn func()) Option {
	return func(cfg *clientConfig) { cfg.onExpired = fn }
}

// New creates a Client for the API at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, goerr.New("base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid base URL", goerr.V("url", baseURL))
	}

	cfg := &clientConfig{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.session == nil {
		cfg.session = NewSession()
	}
	if cfg.httpc == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create cookie jar")
		}
		cfg.httpc = &http.Client{Jar: jar, Timeout: cfg.timeout}
	}

	c := &Client{
		baseURL: parsed,
		httpc:   cfg.httpc,
		session: cfg.session,
		loading: cfg.loading,
	}
	c.refresh = newRefreshCoordinator(cfg.session, c.callRefreshEndpoint, cfg.onExpired)

	c.Auth = &AuthAPI{client: c}
	c.Notifications = &NotificationAPI{client: c}
	c.Org = &OrgAPI{client: c}

	return c, nil
}

// Session returns the session shared with this client
func (c *Client) Session() *Session {
	return c.session
}

// BaseURL returns the resolved API base URL
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// CookieJar exposes the jar holding the refresh and stream credentials so
// the stream dialer can share it. Nil when a custom HTTP client without a
// jar was injected.
func (c *Client) CookieJar() http.CookieJar {
	return c.httpc.Jar
}

// request describes one logical API call
type request struct {
	method      string
	path        string
	query       url.Values
	body        any
	skipLoading bool

	// retried marks a request that has already been replayed once after a
	// token refresh. A second 401 on such a request is terminal.
	retried bool
}

// RequestOption tweaks a single request
type RequestOption func(*request)

// SkipLoading suppresses the global loading indicator for this request
func SkipLoading() RequestOption {
	return func(r *request) { r.skipLoading = true }
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any, opts ...RequestOption) error {
	return c.do(ctx, &request{method: http.MethodGet, path: path, query: query}, out, opts...)
}

func (c *Client) post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.do(ctx, &request{method: http.MethodPost, path: path, body: body}, out, opts...)
}

func (c *Client) put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.do(ctx, &request{method: http.MethodPut, path: path, body: body}, out, opts...)
}

// do runs the full pipeline for one logical request, including at most one
// refresh-and-replay hop on 401.
func (c *Client) do(ctx context.Context, req *request, out any, opts ...RequestOption) error {
	for _, opt := range opts {
		opt(req)
	}

	public := IsPublicPath(req.path, c.baseURL.String())

	body, err := c.send(ctx, req, public)
	if err == nil {
		return decodeBody(body, out, public)
	}

	// Public endpoint errors are always surfaced unchanged, and a request is
	// refreshed-and-retried at most once.
	if public || req.retried || !IsStatus(err, http.StatusUnauthorized) {
		return err
	}

	req.retried = true
	if _, err := c.refresh.Refresh(ctx); err != nil {
		return err
	}

	body, err = c.send(ctx, req, public)
	if err != nil {
		return err
	}
	return decodeBody(body, out, public)
}

// send performs a single network attempt. Exactly one loading-stop signal is
// emitted per attempt regardless of outcome, so the indicator can never get
// stuck. The bearer token is read from the session at send time, not at
// request construction time, so a replay picks up the refreshed token.
func (c *Client) send(ctx context.Context, req *request, public bool) ([]byte, error) {
	if c.loading != nil && !req.skipLoading {
		c.loading.Start()
	}
	stopped := false
	stop := func() {
		if c.loading != nil && !req.skipLoading && !stopped {
			stopped = true
			c.loading.Stop()
		}
	}
	defer stop()

	httpReq, requestID, err := c.buildRequest(ctx, req, public)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		stop()
		return nil, goerr.Wrap(err, "request failed",
			goerr.V("method", req.method),
			goerr.V("path", req.path),
			goerr.V("request_id", requestID),
		)
	}
	defer safe.Drain(ctx, resp.Body)

	body, err := io.ReadAll(resp.Body)
	stop()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read response body",
			goerr.V("method", req.method),
			goerr.V("path", req.path),
			goerr.V("request_id", requestID),
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if !public {
			logging.From(ctx).Error("request failed",
				"method", req.method,
				"path", req.path,
				"status", resp.StatusCode,
				"request_id", requestID,
			)
		}
		return nil, goerr.Wrap(&StatusError{
			StatusCode: resp.StatusCode,
			Method:     req.method,
			Path:       req.path,
			Body:       body,
		}, "unexpected response status", goerr.V("request_id", requestID))
	}

	return body, nil
}

func (c *Client) buildRequest(ctx context.Context, req *request, public bool) (*http.Request, string, error) {
	ref := &url.URL{Path: req.path}
	u := c.baseURL.ResolveReference(ref)
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var reader io.Reader
	if req.body != nil {
		raw, err := json.Marshal(req.body)
		if err != nil {
			return nil, "", goerr.Wrap(err, "failed to encode request body",
				goerr.V("path", req.path))
		}
		reader = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), reader)
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to build request",
			goerr.V("method", req.method), goerr.V("path", req.path))
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-ID", requestID)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if public {
		httpReq.Header.Del("Authorization")
	} else if token := c.session.Token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	return httpReq, requestID, nil
}

// decodeBody unwraps protected responses and unmarshals into out. Public
// responses keep their original shape; callers decode the envelope
// themselves when they need fields from it.
func decodeBody(body []byte, out any, public bool) error {
	if out == nil {
		return nil
	}
	if !public {
		body = UnwrapEnvelope(body)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return goerr.Wrap(err, "failed to decode response body")
	}
	return nil
}

// callRefreshEndpoint performs the raw refresh call. It bypasses the normal
// pipeline: no Authorization header (the expired token is useless here), no
// 401 re-entry, credentials carried by the cookie jar. The response is
// unwrapped best-effort so both enveloped and bare bodies work.
func (c *Client) callRefreshEndpoint(ctx context.Context) (string, error) {
	u := c.baseURL.ResolveReference(&url.URL{Path: "/api/auth/token"})

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader([]byte("{}")))
	if err != nil {
		return "", goerr.Wrap(err, "failed to build refresh request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return "", goerr.Wrap(err, "refresh request failed")
	}
	defer safe.Drain(ctx, resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read refresh response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", goerr.Wrap(&StatusError{
			StatusCode: resp.StatusCode,
			Method:     http.MethodPost,
			Path:       "/api/auth/token",
			Body:       body,
		}, "refresh endpoint rejected the request")
	}

	var parsed model.RefreshResponse
	if err := json.Unmarshal(UnwrapEnvelope(body), &parsed); err != nil {
		return "", goerr.Wrap(err, "failed to decode refresh response")
	}
	return parsed.AccessToken, nil
}
