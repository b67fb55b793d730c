package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/thand-io/reader/internal/common"
	"github.com/thand-io/reader/internal/metrics"
	"github.com/thand-io/reader/internal/notify"
)

const DefaultTimeout = 15 * time.Second

// Config is the one-time setup of a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Headers map[string]string
}

// SessionClearer removes the current session, in memory and on disk.
type SessionClearer interface {
	Clear(ctx context.Context) error
}

// Client sends requests to the reader service. It owns the credential
// used for every request and runs the forced logout on a 401.
//
// Each Send runs a fixed pipeline:
//
//	decorate -> send -> classify -> side effects
//
// The client never retries and never navigates; callers observe the
// cleared session and route the user to login.
type Client struct {
	rest     *resty.Client
	config   Config
	clientID string

	tokenLock sync.RWMutex
	token     string

	clearer    SessionClearer
	notifier   notify.Notifier
	logger     logrus.FieldLogger
	middleware []RequestMiddleware

	// expiring is held while the forced logout runs so concurrent 401s
	// do not repeat it.
	expiring atomic.Bool
}

type Option func(*Client)

func WithSessionClearer(clearer SessionClearer) Option {
	return func(c *Client) { c.clearer = clearer }
}

func WithNotifier(notifier notify.Notifier) Option {
	return func(c *Client) { c.notifier = notifier }
}

// WithLogger sets the logger for request logs and resty diagnostics.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMiddleware appends request middleware after the built in stages.
func WithMiddleware(middleware ...RequestMiddleware) Option {
	return func(c *Client) { c.middleware = append(c.middleware, middleware...) }
}

// WithTransport replaces the underlying round tripper.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *Client) { c.rest.SetTransport(transport) }
}

// WithClientID overrides the X-Client header value. An empty id omits the
// header.
func WithClientID(id string) Option {
	return func(c *Client) { c.clientID = id }
}

func New(config Config, opts ...Option) (*Client, error) {
	if !common.IsValidURL(config.BaseURL) {
		return nil, fmt.Errorf("invalid base url: %q", config.BaseURL)
	}

	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	rest := resty.New().
		SetBaseURL(strings.TrimRight(config.BaseURL, "/")).
		SetTimeout(config.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", common.GetUserAgent())

	c := &Client{
		rest:     rest,
		config:   config,
		clientID: common.GetClientIdentifier().String(),
		notifier: notify.Discard,
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	rest.SetLogger(c.logger)

	return c, nil
}

func (c *Client) BaseURL() string {
	return c.rest.BaseURL
}

// SetToken replaces the credential for all later requests. An empty token
// clears it.
func (c *Client) SetToken(token string) {
	c.tokenLock.Lock()
	defer c.tokenLock.Unlock()

	c.token = token
}

func (c *Client) Token() string {
	c.tokenLock.RLock()
	defer c.tokenLock.RUnlock()

	return c.token
}

// Send runs req through the pipeline. Failures are one of *NetworkError,
// *HTTPError or ErrSessionExpired.
func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, errors.New("request is nil")
	}
	if req.attempted {
		return nil, ErrRequestReused
	}
	req.attempted = true

	method := strings.ToUpper(req.Method)
	if len(method) == 0 {
		method = http.MethodGet
	}

	log := c.logger.WithFields(logrus.Fields{
		"method": method,
		"path":   req.Path,
	})

	// decorate
	r := c.rest.R().SetContext(ctx)
	for _, decorate := range c.decorators() {
		if err := decorate(r, req); err != nil {
			return nil, fmt.Errorf("failed to prepare request: %w", err)
		}
	}
	if req.Body != nil {
		r.SetBody(req.Body)
	}
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}

	// send
	start := time.Now()
	resp, sendErr := r.Execute(method, req.Path)
	elapsed := time.Since(start)
	metrics.HTTPRequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())

	// classify
	response, err := classify(method, req.Path, resp, sendErr)

	// side effects
	c.react(ctx, log, req, err)

	log.WithFields(logrus.Fields{
		"status":   statusOf(response, err),
		"duration": elapsed,
	}).Debugln("Request completed")

	if err != nil {
		return nil, err
	}

	if req.Result != nil {
		if err := response.Decode(req.Result); err != nil {
			return response, fmt.Errorf("failed to decode %s %s response: %w", method, req.Path, err)
		}
	}

	return response, nil
}

func (c *Client) Get(ctx context.Context, path string, result any) error {
	_, err := c.Send(ctx, &Request{Method: http.MethodGet, Path: path, Result: result})
	return err
}

func (c *Client) Post(ctx context.Context, path string, body any, result any) error {
	_, err := c.Send(ctx, &Request{Method: http.MethodPost, Path: path, Body: body, Result: result})
	return err
}

func classify(method string, path string, resp *resty.Response, err error) (*Response, error) {
	if err != nil || resp == nil || resp.RawResponse == nil {
		if err == nil {
			err = errors.New("no response received")
		}
		metrics.HTTPRequestsTotal.WithLabelValues(method, metrics.OutcomeNetworkError).Inc()
		return nil, &NetworkError{Method: method, Path: path, Err: err}
	}

	response := &Response{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
	}

	switch {
	case response.StatusCode == http.StatusUnauthorized:
		metrics.HTTPRequestsTotal.WithLabelValues(method, metrics.OutcomeSessionExpired).Inc()
		return response, ErrSessionExpired

	case response.StatusCode >= http.StatusBadRequest:
		metrics.HTTPRequestsTotal.WithLabelValues(method, metrics.OutcomeHTTPError).Inc()
		return response, &HTTPError{
			Method:     method,
			Path:       path,
			StatusCode: response.StatusCode,
			Body:       response.Body,
		}
	}

	metrics.HTTPRequestsTotal.WithLabelValues(method, metrics.OutcomeSuccess).Inc()
	return response, nil
}

func statusOf(response *Response, err error) string {
	if response != nil {
		return strconv.Itoa(response.StatusCode)
	}
	if err != nil {
		return "none"
	}
	return ""
}
