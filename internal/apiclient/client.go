package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/metrics"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/model"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/session"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/pkg/apierror"
)

const (
	DefaultRefreshPath = "/api/token/refresh/"
	maxResponseBytes   = 10 << 20
)

// ErrResponseTooLarge is returned when a backend body exceeds maxResponseBytes.
var ErrResponseTooLarge = errors.New("response too large")

type Options struct {
	BaseURL     string
	RefreshPath string
	Timeout     time.Duration

	// HTTPClient overrides the default otelhttp-instrumented client.
	HTTPClient *http.Client
	Store      session.Store
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// Client is the single gateway to the backend API. It attaches the session's
// bearer token, refreshes it once when it expires or is rejected, and replays
// the original request.
type Client struct {
	baseURL     string
	refreshPath string
	timeout     time.Duration
	http        *http.Client
	store       session.Store
	metrics     *metrics.Metrics
	log         *slog.Logger
	refreshes   singleflight.Group
}

type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

func New(opts Options) *Client {
	refreshPath := opts.RefreshPath
	if refreshPath == "" {
		refreshPath = DefaultRefreshPath
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		refreshPath: refreshPath,
		timeout:     timeout,
		http:        httpClient,
		store:       opts.Store,
		metrics:     opts.Metrics,
		log:         log.With("component", "apiclient"),
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends req on behalf of sess. sess may be nil for anonymous calls.
//
// A non-2xx response is returned as an error wrapping *apierror.APIError. When the
// session cannot be refreshed the session is invalidated, removed from the store,
// and model.ErrSessionExpired is returned.
func (c *Client) Do(ctx context.Context, sess *session.Session, req *Request) (*Response, error) {
	authed := sess != nil && !req.Anonymous

	if authed && sess.RefreshToken() != "" && tokenExpired(sess.AccessToken()) {
		if err := c.refresh(ctx, sess, sess.AccessToken(), "expired"); err != nil {
			return nil, err
		}
	}

	token := ""
	if authed {
		token = sess.AccessToken()
	}

	resp, err := c.send(ctx, req, token)
	if err != nil {
		return nil, err
	}

	if resp.Status == http.StatusUnauthorized && authed && sess.RefreshToken() != "" {
		if err := c.refresh(ctx, sess, token, "unauthorized"); err != nil {
			return nil, err
		}

		resp, err = c.send(ctx, req, sess.AccessToken())
		if err != nil {
			return nil, err
		}
	}

	if resp.Status < 200 || resp.Status > 299 {
		return resp, statusError(resp.Status, resp.Body)
	}

	return resp, nil
}

// DoJSON sends req and decodes a successful JSON body into out (if non-nil).
func (c *Client) DoJSON(ctx context.Context, sess *session.Session, req *Request, out any) error {
	resp, err := c.Do(ctx, sess, req)
	if err != nil {
		return err
	}

	if out == nil || len(strings.TrimSpace(string(resp.Body))) == 0 {
		return nil
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", req.Method, req.Path, err)
	}

	return nil
}

func (c *Client) send(ctx context.Context, req *Request, token string) (*Response, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, req.bodyReader())
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", req.Method, req.Path, err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		c.metrics.ObserveBackend(req.Method, 0, time.Since(start))
		c.log.Warn("backend request failed", "method", req.Method, "path", req.Path, "error", err)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", req.Method, req.Path, err)
	}

	elapsed := time.Since(start)
	c.metrics.ObserveBackend(req.Method, httpResp.StatusCode, elapsed)
	c.log.Debug("backend request",
		"method", req.Method,
		"path", req.Path,
		"status", httpResp.StatusCode,
		"duration_ms", elapsed.Milliseconds(),
	)

	if len(body) > maxResponseBytes {
		c.log.Warn("backend response too large", "method", req.Method, "path", req.Path, "limit_bytes", maxResponseBytes)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, ErrResponseTooLarge)
	}

	return &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: body}, nil
}

func statusError(status int, body []byte) error {
	apiErr := apierror.FromResponse(status, body)

	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", model.ErrUnauthorized, apiErr)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %w", model.ErrForbidden, apiErr)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", model.ErrNotFound, apiErr)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %w", model.ErrInvalidInput, apiErr)
	default:
		return apiErr
	}
}

// IsSessionExpired reports whether err means the user must sign in again.
func IsSessionExpired(err error) bool {
	return errors.Is(err, model.ErrSessionExpired)
}
