// Package transsmart is a client for the Transsmart shipment API v2.
//
// The client logs in with HTTP Basic credentials, keeps the returned bearer token until
// shortly before it expires and attaches it to every call. Request and response bodies
// are passed through as generic JSON values.
package transsmart

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// ProductionBaseURL is the live API.
	ProductionBaseURL = "https://api.transsmart.com"
	// TestBaseURL is the acceptance API.
	TestBaseURL = "https://accept-api.transsmart.com"

	contentTypeJSON = "application/json;charset=UTF-8"
	userAgent       = "transsmart-go/1.0"
	tracerName      = "github.com/tournevent/transsmart"
)

// Config holds client configuration.
type Config struct {
	Username string
	Password string
	Account  string
	TestMode bool

	// BaseURL and TestBaseURL override the provider hosts.
	BaseURL     string
	TestBaseURL string

	Timeout time.Duration

	// HTTPClient is used for authenticated calls, LoginHTTPClient for the login exchange.
	// The default login client does not verify the server certificate.
	HTTPClient      *http.Client
	LoginHTTPClient *http.Client

	Store    TokenStore
	Recorder Recorder

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Recorder receives per-call measurements.
type Recorder interface {
	RecordRequest(operation, method, status string, duration time.Duration)
	RecordLogin(status string, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordRequest(string, string, string, time.Duration) {}
func (nopRecorder) RecordLogin(string, time.Duration)                    {}

// Client is the Transsmart API client. It is safe for concurrent use; concurrent callers
// that find no valid token share a single login.
type Client struct {
	username    string
	password    string
	account     string
	prodURL     string
	testURL     string
	httpClient  *http.Client
	loginClient *http.Client
	store       TokenStore
	recorder    Recorder
	catalog     *Catalog
	now         func() time.Time
	logger      *otelzap.Logger
	tracer      trace.Tracer

	mu       sync.RWMutex
	testMode bool
	token    Token

	logins singleflight.Group
}

// New creates a new Transsmart client. A nil logger or tracer is replaced by a no-op.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		username:    cfg.Username,
		password:    cfg.Password,
		account:     cfg.Account,
		prodURL:     cfg.BaseURL,
		testURL:     cfg.TestBaseURL,
		httpClient:  cfg.HTTPClient,
		loginClient: cfg.LoginHTTPClient,
		store:       cfg.Store,
		recorder:    cfg.Recorder,
		catalog:     defaultCatalog,
		now:         cfg.Clock,
		logger:      logger,
		tracer:      tracer,
		testMode:    cfg.TestMode,
	}

	if c.prodURL == "" {
		c.prodURL = ProductionBaseURL
	}
	if c.testURL == "" {
		c.testURL = TestBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: timeout}
	}
	if c.loginClient == nil {
		c.loginClient = newLoginHTTPClient(timeout)
	}
	if c.store == nil {
		c.store = NewMemoryStore()
	}
	if c.recorder == nil {
		c.recorder = nopRecorder{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = otelzap.New(zap.NewNop())
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}

	return c
}

// newLoginHTTPClient returns the client used for GET /login.
// Login does not verify the server certificate; authenticated calls do.
func newLoginHTTPClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // see DESIGN.md, TLS on login
	return &http.Client{Timeout: timeout, Transport: transport}
}

// Account returns the configured account identifier.
func (c *Client) Account() string {
	return c.account
}

// Catalog returns the operations the client can invoke.
func (c *Client) Catalog() *Catalog {
	return c.catalog
}

// SetTestMode switches between the production and the acceptance API.
// Changing the environment drops the current token.
func (c *Client) SetTestMode(testMode bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.testMode != testMode {
		c.testMode = testMode
		c.token = Token{}
	}
}

// TestMode reports whether the acceptance API is selected.
func (c *Client) TestMode() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.testMode
}

// Token returns the current token and whether one is held. The token may be expired.
func (c *Client) Token() (Token, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token, !c.token.IsZero()
}

// SetToken replaces the current token, for example with one restored by the caller.
func (c *Client) SetToken(token Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// environment is a consistent view of the selected API: the base URL and store key
// always belong to the same mode.
type environment struct {
	testMode bool
	baseURL  string
	storeKey string
}

func (c *Client) environmentLocked() environment {
	env := environment{testMode: c.testMode, baseURL: c.prodURL, storeKey: "production"}
	if c.testMode {
		env.baseURL = c.testURL
		env.storeKey = "test"
	}
	env.storeKey += ":" + c.account + ":" + c.username
	return env
}

// snapshot returns the selected environment together with the token held for it.
func (c *Client) snapshot() (environment, Token) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.environmentLocked(), c.token
}

// tokenFor returns the held token if env is still the selected environment.
func (c *Client) tokenFor(env environment) Token {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.testMode != env.testMode {
		return Token{}
	}
	return c.token
}

// setTokenFor holds token unless the environment changed since env was taken.
func (c *Client) setTokenFor(env environment, token Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.testMode == env.testMode {
		c.token = token
	}
}

// Login performs the credential exchange unconditionally and stores the new token.
func (c *Client) Login(ctx context.Context) (Token, error) {
	env, _ := c.snapshot()
	return c.login(ctx, env)
}

// ensureToken returns a usable token and the environment it was issued for, logging in
// first when none is held.
func (c *Client) ensureToken(ctx context.Context) (Token, environment, error) {
	env, current := c.snapshot()
	if current.usable(c.now()) {
		return current, env, nil
	}

	ch := c.logins.DoChan(env.storeKey, func() (interface{}, error) {
		flightCtx := context.WithoutCancel(ctx)

		if current := c.tokenFor(env); current.usable(c.now()) {
			return current, nil
		}

		if stored := c.loadStored(flightCtx, env.storeKey); stored.usable(c.now()) {
			c.setTokenFor(env, stored)
			return stored, nil
		}

		return c.login(flightCtx, env)
	})

	select {
	case <-ctx.Done():
		return Token{}, env, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Token{}, env, res.Err
		}
		return res.Val.(Token), env, nil
	}
}

func (c *Client) loadStored(ctx context.Context, key string) Token {
	token, err := c.store.Load(ctx, key)
	if err != nil {
		c.logger.Ctx(ctx).Warn("Failed to load stored token", zap.Error(err))
		return Token{}
	}
	return token
}

func (c *Client) login(ctx context.Context, env environment) (Token, error) {
	ctx, span := c.tracer.Start(ctx, "transsmart.login", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	url := env.baseURL + "/login"
	start := time.Now()

	token, err := c.exchange(ctx, url)
	if err != nil {
		c.recorder.RecordLogin("error", time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		c.logger.Ctx(ctx).Error("Transsmart login failed",
			zap.String("url", url),
			zap.Int("status", StatusCode(err)),
			zap.Error(err),
		)
		return Token{}, err
	}
	c.recorder.RecordLogin("success", time.Since(start))

	c.setTokenFor(env, token)

	if err := c.store.Save(ctx, env.storeKey, token); err != nil {
		c.logger.Ctx(ctx).Warn("Failed to save token", zap.Error(err))
	}

	c.logger.Ctx(ctx).Info("Logged in to Transsmart",
		zap.String("account", c.account),
		zap.Bool("test_mode", env.testMode),
		zap.Time("expires_at", token.ExpiresAt()),
	)
	return token, nil
}

// exchange calls GET /login and builds a token from the response.
func (c *Client) exchange(ctx context.Context, url string) (Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Token{}, newError(KindLogin, err.Error()).WithCause(err).WithRequest(http.MethodGet, url)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.loginClient.Do(req)
	if err != nil {
		return Token{}, newError(KindLogin, err.Error()).WithCause(err).WithRequest(http.MethodGet, url)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Token{}, newError(KindLogin, err.Error()).
			WithCause(err).
			WithStatusCode(resp.StatusCode).
			WithRequest(http.MethodGet, url)
	}

	if !isSuccess(resp.StatusCode) {
		return Token{}, newError(KindLogin, string(body)).
			WithStatusCode(resp.StatusCode).
			WithRequest(http.MethodGet, url)
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Token{}, newError(KindLogin, "invalid login response: "+err.Error()).
			WithCause(err).
			WithStatusCode(resp.StatusCode).
			WithRequest(http.MethodGet, url)
	}
	if payload.Token == "" {
		return Token{}, newError(KindLogin, "login response carries no token").
			WithStatusCode(resp.StatusCode).
			WithRequest(http.MethodGet, url)
	}

	return NewTokenExpiring(payload.Token, c.now().Add(DefaultTokenLifetime)), nil
}

// Request performs an authenticated call against path, relative to the selected base URL.
// body is JSON-encoded when non-nil. The response is decoded into generic JSON values.
func (c *Client) Request(ctx context.Context, method, path string, body interface{}) (interface{}, error) {
	return c.dispatch(ctx, "request", method, path, body)
}

// Get performs an authenticated GET.
func (c *Client) Get(ctx context.Context, path string) (interface{}, error) {
	return c.Request(ctx, http.MethodGet, path, nil)
}

// Post performs an authenticated POST with a JSON body. A nil body is ErrInvalidCall.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (interface{}, error) {
	if body == nil {
		return nil, fmt.Errorf("%w: POST %s requires a body", ErrInvalidCall, path)
	}
	return c.Request(ctx, http.MethodPost, path, body)
}

// Put performs an authenticated PUT with a JSON body. A nil body is ErrInvalidCall.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (interface{}, error) {
	if body == nil {
		return nil, fmt.Errorf("%w: PUT %s requires a body", ErrInvalidCall, path)
	}
	return c.Request(ctx, http.MethodPut, path, body)
}

// Delete performs an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, path string) (interface{}, error) {
	return c.Request(ctx, http.MethodDelete, path, nil)
}

func (c *Client) dispatch(ctx context.Context, operation, method, path string, body interface{}) (interface{}, error) {
	requestID := uuid.New().String()
	ctx, span := c.tracer.Start(ctx, "transsmart."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("transsmart.operation", operation),
			attribute.String("transsmart.request_id", requestID),
			attribute.String("http.request.method", method),
		),
	)
	defer span.End()

	fail := func(err error) (interface{}, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, operation+" failed")
		return nil, err
	}

	token, env, err := c.ensureToken(ctx)
	if err != nil {
		return fail(err)
	}

	url := env.baseURL + path
	log := c.logger.Ctx(ctx)
	log.Debug("Calling Transsmart",
		zap.String("operation", operation),
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)

	start := time.Now()
	resp, err := c.doRequest(ctx, method, url, token, body)
	if err != nil {
		c.recorder.RecordRequest(operation, method, "error", time.Since(start))
		log.Error("Transsmart request failed",
			zap.String("operation", operation),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return fail(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.recorder.RecordRequest(operation, method, strconv.Itoa(resp.StatusCode), time.Since(start))
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if err != nil {
		return fail(newError(KindRequest, err.Error()).
			WithCause(err).
			WithStatusCode(resp.StatusCode).
			WithRequest(method, url))
	}

	if !isSuccess(resp.StatusCode) {
		log.Warn("Transsmart returned an error",
			zap.String("operation", operation),
			zap.String("request_id", requestID),
			zap.Int("status", resp.StatusCode),
		)
		return fail(newError(KindRequest, string(data)).
			WithStatusCode(resp.StatusCode).
			WithRequest(method, url))
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	var result interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		return fail(fmt.Errorf("failed to decode %s response: %w", operation, err))
	}
	return result, nil
}

// doRequest sends one authenticated request. Transport failures come back as *Error.
func (c *Client) doRequest(ctx context.Context, method, url string, token Token, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token.Value())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newError(KindRequest, err.Error()).WithCause(err).WithRequest(method, url)
	}
	return resp, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
