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

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/takallem/takallem/internal/auth"
	"github.com/takallem/takallem/internal/store"
)

const (
	idempotencyHeader = "Idempotency-Key"

	// maxErrorBody caps how much of an error response is read for its detail.
	maxErrorBody = 64 << 10
)

// Client calls the Takallem service. A Client without a token can only log
// in; use WithToken to get an authenticated copy.
type Client struct {
	baseURL string
	opts    options

	// http carries the bearer token; media never does, since media URLs
	// may point at third-party storage.
	http  *http.Client
	media *http.Client
}

type options struct {
	transport http.RoundTripper
	timeout   time.Duration
	token     string
	events    store.EventRepo
	now       func() time.Time
	newKey    func() string
}

// Option configures a Client.
type Option func(*options)

// WithTransport sets the base transport. Tests point it at httptest servers.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithTimeout bounds every request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithToken authenticates requests with a bearer token.
func WithToken(token string) Option {
	return func(o *options) { o.token = token }
}

// WithEventRepo records every request in the store's request history.
func WithEventRepo(repo store.EventRepo) Option {
	return func(o *options) { o.events = repo }
}

// WithClock overrides the clock used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithKeyFunc overrides how idempotency keys are generated.
func WithKeyFunc(fn func() string) Option {
	return func(o *options) { o.newKey = fn }
}

// New creates a Client for the service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server URL %q must use http or https", baseURL)
	}

	o := options{
		timeout: 30 * time.Second,
		now:     time.Now,
		newKey:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return build(strings.TrimRight(baseURL, "/"), o), nil
}

func build(baseURL string, o options) *Client {
	base := o.transport
	if base == nil {
		base = http.DefaultTransport
	}
	if o.events != nil {
		base = WithLogging(base, o.events)
	}

	authed := base
	if o.token != "" {
		authed = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: o.token, TokenType: "Bearer"}),
			Base:   base,
		}
	}

	return &Client{
		baseURL: baseURL,
		opts:    o,
		http:    &http.Client{Transport: authed, Timeout: o.timeout},
		media:   &http.Client{Transport: base, Timeout: o.timeout},
	}
}

// WithToken returns a copy of c that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	o := c.opts
	o.token = token
	return build(c.baseURL, o)
}

// Token returns the bearer token, or "" if the client is anonymous.
func (c *Client) Token() string { return c.opts.token }

// BaseURL returns the service URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// call describes one request.
type call struct {
	method string
	route  string // template, e.g. /resource/{id}
	path   string // concrete, already escaped
	query  url.Values

	body        io.Reader
	contentType string

	// mutation calls carry an Idempotency-Key.
	mutation bool
	// public calls are sent without a token.
	public bool
}

func jsonCall(method, route, path string, payload any) (call, error) {
	c := call{method: method, route: route, path: path}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return c, fmt.Errorf("encode request: %w", err)
		}
		c.body = bytes.NewReader(b)
		c.contentType = "application/json"
	}
	return c, nil
}

// do sends cl and decodes a 2xx JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	if !cl.public {
		if err := auth.Check(c.opts.token, c.opts.now()); err != nil {
			return &AuthError{Err: err}
		}
	}

	target := c.baseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	ctx = WithRoute(ctx, cl.route)
	req, err := http.NewRequestWithContext(ctx, cl.method, target, cl.body)
	if err != nil {
		return &APIError{Route: cl.route, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	if cl.mutation {
		req.Header.Set(idempotencyHeader, c.opts.newKey())
	}

	client := c.http
	if cl.public {
		client = c.media
	}
	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return &APIError{Route: cl.route, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return responseError(cl.route, resp.StatusCode, body)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Status: resp.StatusCode, Route: cl.route, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// path joins escaped segments onto a route prefix.
func path(prefix string, segments ...any) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(fmt.Sprint(s)))
	}
	return b.String()
}
