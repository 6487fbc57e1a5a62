package gateway

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/rm-hull/inventory-console/internal/models"
	"github.com/rm-hull/inventory-console/internal/notify"
)

const (
	DefaultSuccessDuration = 3500 * time.Millisecond
	DefaultErrorDuration   = 6000 * time.Millisecond
	DefaultRefreshTimeout  = 30 * time.Second
)

// CredentialStore is the subset of a session store the gateway needs.
type CredentialStore interface {
	State() models.Credential
	SetAccessToken(token string) error
	SetRefreshToken(token string) error
	Clear() error
}

type Config struct {
	BaseURL     string
	LoginPath   string
	RefreshPath string
	// RefreshTimeout bounds a single refresh call. Zero means no deadline
	// beyond the transport's own.
	RefreshTimeout time.Duration
	Schema         Schema
	HTTPClient     *http.Client
}

// Request describes one outbound call. It is passed by value, so the retry
// marker (Attempt) never leaks between calls.
type Request struct {
	Method string
	Path   string
	Query  neturl.Values
	Header http.Header
	// Body is sent as JSON; a []byte body is sent as-is.
	Body any
	// Quiet suppresses every notification for this call.
	Quiet bool
	// Attempt is 0 for the first dispatch and 1 for the single retry made
	// after a token refresh.
	Attempt int

	token string
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return errors.Wrap(err, "failed to unmarshal response")
	}
	return nil
}

// Gateway is an HTTP client for the remote API that attaches bearer tokens,
// transparently refreshes an expired access token, and forwards any
// user-facing messages in responses to a notification sink.
type Gateway struct {
	baseURL        string
	loginPath      string
	refreshPath    string
	refreshTimeout time.Duration
	schema         Schema
	client         *http.Client
	store          CredentialStore
	sink           notify.Sink
	refresh        refreshCoordinator
}

func New(cfg Config, store CredentialStore, sink notify.Sink) *Gateway {
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/auth/login"
	}
	if cfg.RefreshPath == "" {
		cfg.RefreshPath = "/auth/refresh"
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if sink == nil {
		sink = notify.SinkFunc(func(string, notify.Severity, time.Duration) {})
	}

	return &Gateway{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		loginPath:      cfg.LoginPath,
		refreshPath:    cfg.RefreshPath,
		refreshTimeout: cfg.RefreshTimeout,
		schema:         cfg.Schema,
		client:         cfg.HTTPClient,
		store:          store,
		sink:           sink,
	}
}

func (g *Gateway) Get(ctx context.Context, path string, query neturl.Values) (*Response, error) {
	return g.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

func (g *Gateway) Post(ctx context.Context, path string, body any) (*Response, error) {
	return g.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

func (g *Gateway) Put(ctx context.Context, path string, body any) (*Response, error) {
	return g.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

func (g *Gateway) Delete(ctx context.Context, path string) (*Response, error) {
	return g.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}

func (g *Gateway) Do(ctx context.Context, req Request) (*Response, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	resp, err := g.dispatch(ctx, req)
	if err == nil {
		g.notifySuccess(req, resp)
		return resp, nil
	}

	if g.shouldRefresh(req, err) {
		return g.refreshAndRetry(ctx, req)
	}

	g.notifyFailure(req, err)
	return nil, err
}

func (g *Gateway) Login(ctx context.Context, username, password string) error {
	resp, err := g.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   g.loginPath,
		Body:   models.LoginRequest{Username: username, Password: password},
	})
	if err != nil {
		return errors.Wrap(err, "login failed")
	}

	env := g.schema.Decode(resp.Body)
	if env.Success != nil && !*env.Success {
		return errors.Newf("login failed: %s", env.Message)
	}
	if env.AccessToken == "" {
		return errors.Wrap(ErrNoAccessToken, "login failed")
	}

	if err := g.store.SetAccessToken(env.AccessToken); err != nil {
		return err
	}
	return g.store.SetRefreshToken(env.RefreshToken)
}

func (g *Gateway) Logout() error {
	return g.store.Clear()
}

// State returns the current token pair.
func (g *Gateway) State() models.Credential {
	return g.store.State()
}

func (g *Gateway) isAuthExempt(path string) bool {
	return strings.Contains(path, g.loginPath) || strings.Contains(path, g.refreshPath)
}

func (g *Gateway) shouldRefresh(req Request, err error) bool {
	return StatusCode(err) == http.StatusUnauthorized && req.Attempt == 0 && !g.isAuthExempt(req.Path)
}

func (g *Gateway) refreshAndRetry(ctx context.Context, req Request) (*Response, error) {
	retry := req
	retry.Attempt = req.Attempt + 1

	type result struct {
		resp *Response
		err  error
	}
	done := make(chan result, 1)
	waiter := &pendingRequest{
		resume: func(token string, err error) {
			defer func() {
				if r := recover(); r != nil {
					done <- result{err: errors.Newf("panic while replaying queued request: %v", r)}
				}
			}()
			if err != nil {
				done <- result{err: err}
				return
			}
			if ctx.Err() != nil {
				done <- result{err: ctx.Err()}
				return
			}
			replay := retry
			replay.token = token
			replayedRequests.Inc()
			resp, err := g.Do(ctx, replay)
			done <- result{resp, err}
		},
	}

	if !g.refresh.tryBeginRefresh(waiter) {
		select {
		case r := <-done:
			return r.resp, r.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	token, err := g.driveRefresh(ctx, req.Quiet)
	if err != nil {
		return nil, err
	}

	retry.token = token
	return g.Do(ctx, retry)
}

// driveRefresh runs one refresh cycle. Whatever happens, parked requests are
// resumed and the cycle is closed before it returns.
func (g *Gateway) driveRefresh(ctx context.Context, quiet bool) (token string, err error) {
	defer func() {
		if r := recover(); r != nil {
			token, err = "", errors.Newf("panic during token refresh: %v", r)
		}
		if err != nil {
			refreshes.WithLabelValues("failure").Inc()
			err = errors.Mark(errors.Wrap(err, "token refresh failed"), ErrRefreshFailed)
			if clearErr := g.store.Clear(); clearErr != nil {
				log.Printf("failed to clear credentials: %v", clearErr)
			}
		} else {
			refreshes.WithLabelValues("success").Inc()
		}
		g.refresh.completeRefresh(token, err)
	}()

	return g.refreshTokens(ctx, quiet)
}

func (g *Gateway) refreshTokens(ctx context.Context, quiet bool) (string, error) {
	refreshToken := g.store.State().RefreshToken
	if refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	refreshCtx := context.WithoutCancel(ctx)
	if g.refreshTimeout > 0 {
		var cancel context.CancelFunc
		refreshCtx, cancel = context.WithTimeout(refreshCtx, g.refreshTimeout)
		defer cancel()
	}

	resp, err := g.Do(refreshCtx, Request{
		Method: http.MethodPost,
		Path:   g.refreshPath,
		Body:   models.TokenRefreshRequest{RefreshToken: refreshToken},
		Quiet:  quiet,
	})
	if err != nil {
		return "", err
	}

	env := g.schema.Decode(resp.Body)
	if env.AccessToken == "" {
		return "", ErrNoAccessToken
	}

	nextRefreshToken := env.RefreshToken
	if nextRefreshToken == "" {
		nextRefreshToken = refreshToken
	}
	if err := g.store.SetAccessToken(env.AccessToken); err != nil {
		return "", err
	}
	if err := g.store.SetRefreshToken(nextRefreshToken); err != nil {
		return "", err
	}

	log.Printf("Token refresh completed successfully")
	return env.AccessToken, nil
}

func (g *Gateway) dispatch(ctx context.Context, req Request) (*Response, error) {
	url := g.baseURL + req.Path
	if len(req.Query) > 0 {
		url += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		switch body := req.Body.(type) {
		case []byte:
			bodyReader = bytes.NewReader(body)
		default:
			jsonData, err := json.Marshal(body)
			if err != nil {
				return nil, errors.Wrap(err, "failed to marshal request body")
			}
			bodyReader = bytes.NewReader(jsonData)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, bodyReader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if bodyReader != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	httpReq.Header.Del("Authorization")
	if !g.isAuthExempt(req.Path) {
		token := req.token
		if token == "" {
			token = g.store.State().AccessToken
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	log.Printf("%s %s", req.Method, url)
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to perform %s %s", req.Method, url)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("failed to close body: %v", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPStatusError{
			Method:     req.Method,
			URL:        url,
			Status:     resp.Status,
			StatusCode: resp.StatusCode,
			Body:       body,
		}
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

func (g *Gateway) notifySuccess(req Request, resp *Response) {
	if req.Quiet || req.Method == http.MethodGet {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("failed to forward response message: %v", r)
		}
	}()

	env := g.schema.Decode(resp.Body)
	if env.Message == "" {
		return
	}

	severity := notify.Info
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		severity = notify.Success
	}
	if env.Severity != "" {
		severity = env.Severity
	}
	if env.Success != nil && !*env.Success {
		severity = notify.Error
	}

	duration := DefaultSuccessDuration
	if env.Duration > 0 {
		duration = env.Duration
	}

	notifications.WithLabelValues(string(severity)).Inc()
	g.sink.Notify(env.Message, severity, duration)
}

func (g *Gateway) notifyFailure(req Request, err error) {
	if req.Quiet {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("failed to forward error message: %v", r)
		}
	}()

	var stErr *HTTPStatusError
	if !errors.As(err, &stErr) {
		return
	}

	env := g.schema.Decode(stErr.Body)
	if env.Message == "" {
		return
	}

	duration := DefaultErrorDuration
	if env.Duration > 0 {
		duration = env.Duration
	}

	notifications.WithLabelValues(string(notify.Error)).Inc()
	g.sink.Notify(env.Message, notify.Error, duration)
}
