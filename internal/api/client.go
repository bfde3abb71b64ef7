// Package api is the transport layer over the storefront REST API. It
// attaches bearer credentials to outgoing requests and transparently performs
// a one-shot token refresh when a request is rejected with 401.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/steve-ongera/amazon/internal/credstore"
	apperrors "github.com/steve-ongera/amazon/pkg/errors"
	"github.com/steve-ongera/amazon/pkg/httpclient"
	"github.com/steve-ongera/amazon/pkg/logger"
)

const refreshPath = "/auth/refresh/"

// LoginPath is where the client navigates when the session cannot be recovered.
const LoginPath = "/login"

// Navigator abstracts view navigation so the transport can redirect to the
// login entry point without knowing anything about the UI.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// NopNavigator discards navigation, for headless use.
var NopNavigator = NavigatorFunc(func(string) {})

// Doer executes HTTP requests. Both httpclient.Client and
// httpclient.CircuitBreakerClient satisfy this.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// RequestSpec describes a single API call.
type RequestSpec struct {
	Method string
	Path   string
	Query  url.Values
	Body   any

	// retried marks that this request already went through the 401 refresh
	// path, preventing recursive refresh chains.
	retried bool
}

// Client is the authenticated storefront API client.
type Client struct {
	baseURL string
	http    Doer
	creds   credstore.Store
	nav     Navigator
	logger  *slog.Logger
}

// New creates an API client. baseURL is the API root, e.g.
// "http://localhost:8000/api".
func New(baseURL string, doer Doer, creds credstore.Store, nav Navigator, log *slog.Logger) *Client {
	if nav == nil {
		nav = NopNavigator
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    doer,
		creds:   creds,
		nav:     nav,
		logger:  log,
	}
}

// Do executes the request described by spec and, when out is non-nil, decodes
// the JSON response body into it. All non-2xx responses come back as
// normalized APIErrors; raw transport errors never escape past this layer.
func (c *Client) Do(ctx context.Context, spec RequestSpec, out any) error {
	ctx = logger.WithRequestID(ctx, uuid.NewString())

	resp, err := c.send(ctx, spec)
	if err != nil {
		requestsTotal.WithLabelValues(spec.Method, "error").Inc()
		return fmt.Errorf("%s %s: %w", spec.Method, spec.Path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized && !spec.retried {
		return c.refreshAndRetry(ctx, spec, resp, out)
	}

	requestsTotal.WithLabelValues(spec.Method, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode >= 400 {
		return httpclient.ParseResponseError(resp)
	}

	return decodeBody(resp, out)
}

// send builds and issues one HTTP request, attaching the current access token
// as a bearer credential if one is stored.
func (c *Client) send(ctx context.Context, spec RequestSpec) (*http.Response, error) {
	u := c.baseURL + spec.Path
	if len(spec.Query) > 0 {
		u += "?" + spec.Query.Encode()
	}

	var body io.Reader
	if spec.Body != nil {
		data, err := json.Marshal(spec.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, spec.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if spec.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", logger.RequestIDFromContext(ctx))

	pair, err := c.creds.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if pair.Access != "" {
		req.Header.Set("Authorization", "Bearer "+pair.Access)
	}

	return c.http.Do(ctx, req)
}

// refreshAndRetry handles a 401 on a not-yet-retried request: exchange the
// refresh token for a new access token, persist it, and re-issue the original
// request exactly once. An unrecoverable expiry clears both stored tokens and
// redirects to the login entry point.
//
// Concurrent requests that each hit a 401 before a refresh completes are not
// coalesced; each attempts its own refresh independently.
func (c *Client) refreshAndRetry(ctx context.Context, spec RequestSpec, resp *http.Response, out any) error {
	origErr := httpclient.ParseResponseError(resp)
	spec.retried = true

	pair, err := c.creds.Load(ctx)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	if pair.Refresh == "" {
		tokenRefreshTotal.WithLabelValues("no_refresh_token").Inc()
		// Nothing to recover with. Signal session expiry but keep the server's
		// message, so a rejected login still reads as "invalid credentials".
		expired := apperrors.SessionExpired()
		expired.Message = apperrors.UserMessage(origErr, expired.Message)
		return expired
	}

	access, err := c.refreshAccessToken(ctx, pair.Refresh)
	if err != nil {
		tokenRefreshTotal.WithLabelValues("failure").Inc()
		logger.WithContext(ctx, c.logger).WarnContext(ctx, "token refresh failed, logging out",
			slog.String("error", err.Error()),
		)
		_ = c.creds.Clear(ctx)
		c.nav.Navigate(LoginPath)
		return origErr
	}

	tokenRefreshTotal.WithLabelValues("success").Inc()
	if err := c.creds.SaveAccess(ctx, access); err != nil {
		return fmt.Errorf("persist refreshed access token: %w", err)
	}

	return c.Do(ctx, spec, out)
}

// refreshAccessToken exchanges the refresh token for a new access token via
// the dedicated refresh endpoint. No bearer header is attached.
func (c *Client) refreshAccessToken(ctx context.Context, refresh string) (string, error) {
	payload, err := json.Marshal(map[string]string{"refresh": refresh})
	if err != nil {
		return "", fmt.Errorf("encode refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("refresh request: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", httpclient.ParseResponseError(resp)
	}

	var result struct {
		Access string `json:"access"`
	}
	if err := decodeBody(resp, &result); err != nil {
		return "", err
	}
	if result.Access == "" {
		return "", fmt.Errorf("refresh response contained no access token")
	}
	return result.Access, nil
}

func decodeBody(resp *http.Response, out any) error {
	defer func() { _ = resp.Body.Close() }()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// del is a typed DELETE helper used by the endpoint methods.
func del(ctx context.Context, c *Client, path string) error {
	return c.Do(ctx, RequestSpec{Method: http.MethodDelete, Path: path}, nil)
}

// get is a typed GET helper used by the endpoint methods.
func get[T any](ctx context.Context, c *Client, path string, query url.Values) (*T, error) {
	var out T
	err := c.Do(ctx, RequestSpec{Method: http.MethodGet, Path: path, Query: query}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// post is a typed POST helper used by the endpoint methods.
func post[T any](ctx context.Context, c *Client, path string, body any) (*T, error) {
	var out T
	err := c.Do(ctx, RequestSpec{Method: http.MethodPost, Path: path, Body: body}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
