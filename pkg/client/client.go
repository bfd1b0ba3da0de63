// Package client provides the core signed HTTP client for the vendor's REST
// API: LMv1 request signing, offset pagination, rate-limit handling, and
// error classification.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/monitorkit/lm-api-client/pkg/auth"
	"github.com/monitorkit/lm-api-client/pkg/pagination"
)

// Prometheus metrics for API client operations.
var (
	lmRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lmapi_requests_total",
		Help: "Total API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	lmRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lmapi_request_duration_seconds",
		Help:    "API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	lmErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lmapi_errors_total",
		Help: "Total API errors by class",
	}, []string{"class"})
)

// Envelope is the vendor's list-response shape. Total reports the full result
// size across all pages; Items carries the records of the current page as
// opaque JSON.
type Envelope struct {
	Total int               `json:"total"`
	Items []json.RawMessage `json:"items"`
}

// errorBody is the vendor's error-response shape.
type errorBody struct {
	ErrorMessage string `json:"errorMessage"`
	ErrorCode    int    `json:"errorCode"`
}

// Request describes one API call. Path is the resource path that gets signed;
// the query components are appended to the URL but are not part of the
// signature.
type Request struct {
	Verb  string
	Path  string
	Query url.Values

	// RawQuery is a pre-encoded query component embedded into the URL
	// verbatim, ahead of the encoded Query values. Filter expressions use
	// it: the vendor's filter-value encoding table deviates from URL
	// escaping, so its output must never pass through url.Values.Encode.
	RawQuery string

	Body []byte
}

// Config holds the client configuration.
type Config struct {
	// Account is the vendor account subdomain.
	Account string

	// Credentials is the LMv1 access ID / access key pair.
	Credentials auth.Credentials

	// BaseURL overrides the account-derived API base URL. Mainly for tests.
	BaseURL string

	// PageSize is the page size for paginated fetches.
	PageSize int

	// MinTLSVersion is the minimum TLS version for the transport.
	MinTLSVersion uint16

	// RateLimitWait is the fixed wait before the single HTTP 429 retry.
	RateLimitWait time.Duration

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// HTTPClient overrides the constructed HTTP client (for testing).
	HTTPClient *http.Client
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(account string, creds auth.Credentials) Config {
	return Config{
		Account:       account,
		Credentials:   creds,
		PageSize:      950,
		MinTLSVersion: tls.VersionTLS12,
		RateLimitWait: 60 * time.Second,
		Timeout:       30 * time.Second,
	}
}

// Client is the signed API client. It is stateless across calls; each
// invocation signs and sends independently.
type Client struct {
	httpClient *http.Client
	baseURL    string
	config     Config
	logger     zerolog.Logger
}

// New creates a new API client.
func New(cfg Config) (*Client, error) {
	if cfg.Account == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("account is required")
	}

	if cfg.Credentials.IsZero() {
		return nil, fmt.Errorf("access id and access key are required")
	}

	if cfg.PageSize <= 0 {
		cfg.PageSize = 950
	}

	if cfg.MinTLSVersion == 0 {
		cfg.MinTLSVersion = tls.VersionTLS12
	}

	if cfg.RateLimitWait <= 0 {
		cfg.RateLimitWait = 60 * time.Second
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.example-vendor.com/api", cfg.Account)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		transport := cleanhttp.DefaultPooledTransport()
		transport.TLSClientConfig = &tls.Config{MinVersion: cfg.MinTLSVersion}
		httpClient = &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		}
	}

	logger := log.With().Str("component", "lm-client").Logger()

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		config:     cfg,
		logger:     logger,
	}, nil
}

// PageSize returns the configured page size.
func (c *Client) PageSize() int {
	return c.config.PageSize
}

// Do signs and sends a single request and returns the raw response body on
// 2xx. HTTP 429 is retried exactly once after the configured wait; any other
// failure aborts.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	epoch := time.Now().UnixMilli()
	header := c.config.Credentials.Header(req.Verb, epoch, req.Body, req.Path)
	return c.send(ctx, req, header)
}

// GetAll fetches every page of a list endpoint and returns the concatenated
// items. The epoch timestamp and signature are computed once and reused for
// every page of the run; the result is all-or-nothing.
//
// Known limitation, preserved deliberately: a run long enough to outlive the
// vendor's token validity window will fail on a late page rather than
// re-sign. Query parameters are not part of the LMv1 message, so the growing
// offset does not invalidate the signature itself.
func (c *Client) GetAll(ctx context.Context, path string, query url.Values, rawQuery string) ([]json.RawMessage, error) {
	epoch := time.Now().UnixMilli()
	run := &pagedRun{
		client:   c,
		path:     path,
		query:    query,
		rawQuery: rawQuery,
		header:   c.config.Credentials.Header(http.MethodGet, epoch, nil, path),
	}

	fetcher := pagination.NewFetcher(run, pagination.Config{PageSize: c.config.PageSize})
	return fetcher.FetchAll(ctx)
}

// GetOne fetches a point-lookup endpoint. Exactly one page is requested even
// when the reported total is zero; callers decide what an empty Items slice
// means.
func (c *Client) GetOne(ctx context.Context, path string, query url.Values, rawQuery string) (*Envelope, error) {
	body, err := c.Do(ctx, Request{Verb: http.MethodGet, Path: path, Query: query, RawQuery: rawQuery})
	if err != nil {
		return nil, err
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return &env, nil
}

// pagedRun fixes the epoch and signature for one paginated fetch and varies
// only the offset between pages.
type pagedRun struct {
	client   *Client
	path     string
	query    url.Values
	rawQuery string
	header   string
}

// FetchPage implements pagination.PageFetcher.
func (r *pagedRun) FetchPage(ctx context.Context, offset, size int) ([]json.RawMessage, int, error) {
	query := url.Values{}
	for k, vs := range r.query {
		query[k] = vs
	}
	query.Set("offset", strconv.Itoa(offset))
	query.Set("size", strconv.Itoa(size))

	body, err := r.client.send(ctx, Request{Verb: http.MethodGet, Path: r.path, Query: query, RawQuery: r.rawQuery}, r.header)
	if err != nil {
		return nil, 0, err
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, 0, fmt.Errorf("decode envelope: %w", err)
	}
	return env.Items, env.Total, nil
}

// send issues one signed request with the rate-limit retry applied and
// returns the response body on 2xx.
func (c *Client) send(ctx context.Context, req Request, authHeader string) ([]byte, error) {
	endpoint := req.Path

	startTime := time.Now()
	defer func() {
		lmRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	requestURL := c.baseURL + req.Path
	rawQuery := req.RawQuery
	if encoded := req.Query.Encode(); encoded != "" {
		if rawQuery != "" {
			rawQuery += "&" + encoded
		} else {
			rawQuery = encoded
		}
	}
	if rawQuery != "" {
		requestURL += "?" + rawQuery
	}

	attempt := func() (*http.Response, error) {
		var bodyReader io.Reader
		if len(req.Body) > 0 {
			bodyReader = bytes.NewReader(req.Body)
		}

		httpReq, err := http.NewRequestWithContext(ctx, req.Verb, requestURL, bodyReader)
		if err != nil {
			return nil, &APIError{
				Class:   ErrorClassTransport,
				Message: "create request",
				Err:     err,
			}
		}

		httpReq.Header.Set("Authorization", authHeader)
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("X-Version", "2")

		c.logger.Debug().
			Str("endpoint", endpoint).
			Str("method", req.Verb).
			Msg("Executing API request")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
			lmErrorsTotal.WithLabelValues(string(ErrorClassTransport)).Inc()
			lmRequestsTotal.WithLabelValues(endpoint, "transport_error").Inc()
			return nil, &APIError{
				Class:   ErrorClassTransport,
				Message: "send request",
				Err:     err,
			}
		}
		return resp, nil
	}

	resp, err := c.sendWithRateLimitRetry(ctx, endpoint, attempt)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Class == ErrorClassRateLimit {
			lmErrorsTotal.WithLabelValues(string(ErrorClassRateLimit)).Inc()
			lmRequestsTotal.WithLabelValues(endpoint, "429").Inc()
		}
		return nil, err
	}
	defer resp.Body.Close()

	lmRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		lmErrorsTotal.WithLabelValues(string(ErrorClassTransport)).Inc()
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Class:      ErrorClassTransport,
			Message:    "read response body",
			Err:        err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		class := classifyStatus(resp.StatusCode)
		lmErrorsTotal.WithLabelValues(string(class)).Inc()

		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Class:      class,
			Message:    resp.Status,
		}
		var vendorErr errorBody
		if json.Unmarshal(body, &vendorErr) == nil && vendorErr.ErrorMessage != "" {
			apiErr.Message = vendorErr.ErrorMessage
			apiErr.Code = vendorErr.ErrorCode
		}

		c.logger.Warn().
			Str("endpoint", endpoint).
			Str("method", req.Verb).
			Int("status", resp.StatusCode).
			Int("code", apiErr.Code).
			Str("error_class", string(class)).
			Str("message", apiErr.Message).
			Msg("API request error")
		return nil, apiErr
	}

	return body, nil
}
