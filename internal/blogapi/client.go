// Package blogapi is the typed client for the remote blog API.
//
// Every post, comment, like and account operation the views perform goes
// through Client. Each method is exactly one HTTP round trip: no retries, no
// batching, no caching. Failures come back as apperror values so the views
// can branch on errors.Is without knowing anything about HTTP:
//
//	404 on a post route            → apperror.ErrNotFound
//	4xx on /login or /register     → apperror.ErrUnauthorized (one message)
//	anything else that isn't 2xx   → apperror.ErrRequestFailed
//
// AUTHENTICATION:
// When the client is given a session.Reader and the session holds a token,
// requests carry "Authorization: Bearer <token>". The header is attached by an
// oauth2 transport built from a static token source; the token is never
// refreshed or inspected.
package blogapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/sakif/storyblog/internal/apperror"
	"github.com/sakif/storyblog/internal/session"
)

const userAgent = "storyblog-client/1.0"

// Client talks to one deployment of the blog API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	session    session.Reader
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client. Tests use this to point
// the client at an httptest server's client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSession makes the client attach the current session's token to every
// request. The session is read per request, so logins and logouts take
// effect immediately.
func WithSession(r session.Reader) Option {
	return func(c *Client) { c.session = r }
}

// New creates a Client for the API rooted at baseURL, e.g.
// "https://my-blog-api.example.com". Post routes live under baseURL/posts and
// auth routes at baseURL/login and baseURL/register.
func New(baseURL string, logger *slog.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("blogapi: parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("blogapi: base URL %q must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		// No Timeout: a hung request leaves the view pending until the
		// caller's context gives up.
		httpClient: &http.Client{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// statusError is a non-2xx response. It stays inside this package; callers
// only ever see the apperror it is mapped to.
type statusError struct {
	Status int
	Body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// request describes one round trip.
type request struct {
	method      string
	segments    []string // path below baseURL, one unescaped element each
	query       url.Values
	body        io.Reader
	contentType string
}

// jsonBody encodes v for a request body.
func jsonBody(v any) (io.Reader, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("blogapi: encoding request body: %w", err)
	}
	return &buf, nil
}

// do performs the request and decodes a 2xx body into out (when out is not
// nil). Transport failures and non-2xx statuses are returned unmapped; the
// operation methods translate them.
func (c *Client) do(ctx context.Context, req request, out any) error {
	u := *c.baseURL
	u.RawPath = c.baseURL.EscapedPath()
	for _, seg := range req.segments {
		u.Path += "/" + seg
		u.RawPath += "/" + url.PathEscape(seg)
	}
	path := u.EscapedPath()
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), req.body)
	if err != nil {
		return fmt.Errorf("blogapi: building request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}

	start := time.Now()
	resp, err := c.clientFor(ctx).Do(httpReq)
	if err != nil {
		c.logger.Warn("api request failed",
			slog.String("method", req.method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug("api request completed",
		slog.String("method", req.method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// A short excerpt is enough for the logs.
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(excerpt))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("blogapi: decoding %s %s response: %w", req.method, path, err)
	}
	return nil
}

// clientFor returns the HTTP client for one request: the plain client when
// there is no session, or an oauth2 client carrying the bearer token.
func (c *Client) clientFor(ctx context.Context) *http.Client {
	if c.session == nil {
		return c.httpClient
	}
	sess := c.session.Current(ctx)
	if !sess.Authenticated() {
		return c.httpClient
	}

	// oauth2.NewClient wraps the transport of the client stored under
	// oauth2.HTTPClient in the context.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: sess.Token,
		TokenType:   "Bearer",
	}))
}

// mapPostError translates a failure on a post route.
func mapPostError(op, id string, err error) error {
	var se *statusError
	if errors.As(err, &se) && se.Status == http.StatusNotFound {
		return apperror.NotFound("post", id)
	}
	return apperror.RequestFailed(op, err)
}

// mapAuthError translates a failure on /login or /register. Every 4xx is the
// same Unauthorized error so the caller cannot tell an unknown user from a
// wrong password.
func mapAuthError(op string, err error) error {
	var se *statusError
	if errors.As(err, &se) && se.Status >= 400 && se.Status < 500 {
		return apperror.Unauthorized()
	}
	return apperror.RequestFailed(op, err)
}
