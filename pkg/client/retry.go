package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for rate-limit handling.
var (
	lmRateLimitRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lmapi_rate_limit_retries_total",
		Help: "Total requests retried after an HTTP 429 response",
	})

	lmRateLimitAbortsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lmapi_rate_limit_aborts_total",
		Help: "Total requests aborted because the retry was also rate limited",
	})
)

// sendWithRateLimitRetry runs attempt once and, if the response is HTTP 429,
// waits the configured delay and runs it exactly once more. A second 429
// aborts with ErrRateLimited. There is no backoff and no further retry; every
// other outcome is returned to the caller as-is.
func (c *Client) sendWithRateLimitRetry(ctx context.Context, endpoint string, attempt func() (*http.Response, error)) (*http.Response, error) {
	resp, err := attempt()
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusTooManyRequests {
		return resp, nil
	}
	resp.Body.Close()

	lmRateLimitRetriesTotal.Inc()
	c.logger.Warn().
		Str("endpoint", endpoint).
		Dur("wait", c.config.RateLimitWait).
		Msg("Rate limited, waiting before single retry")

	select {
	case <-ctx.Done():
		c.logger.Warn().
			Str("endpoint", endpoint).
			Msg("Context cancelled during rate-limit wait")
		return nil, fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
	case <-time.After(c.config.RateLimitWait):
	}

	resp, err = attempt()
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		lmRateLimitAbortsTotal.Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Msg("Rate limit persisted after retry, aborting")
		return nil, &APIError{
			StatusCode: http.StatusTooManyRequests,
			Class:      ErrorClassRateLimit,
			Message:    "rate limit persisted after retry",
			Err:        ErrRateLimited,
		}
	}

	c.logger.Info().
		Str("endpoint", endpoint).
		Msg("Request succeeded after rate-limit retry")
	return resp, nil
}
