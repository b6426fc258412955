package geolib

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

type httpClient struct {
	userAgent      string
	client         *http.Client
	rateLimiter    *rate.Limiter
	circuitBreaker *circuitBreaker
}

// Do executes a request. 4xx responses are returned as is: these are
// answers of a healthy upstream and providers have to interpret them on
// their own. 5xx responses and network errors are errors which count
// towards opening a circuit breaker.
func (h *httpClient) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if err := h.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter has failed: %w", err)
	}

	req.Header.Set("User-Agent", h.userAgent)

	return h.circuitBreaker.Do(ctx, func(ctx context.Context) (*http.Response, error) {
		resp, err := h.client.Do(req.WithContext(ctx))

		switch {
		case err != nil && ctx.Err() != nil:
			closeResponse(resp)

			return nil, fmt.Errorf("%w: %v", ErrCircuitBreakerIgnore, err)
		case err != nil:
			closeResponse(resp)

			return nil, err
		case resp.StatusCode >= http.StatusInternalServerError:
			closeResponse(resp)

			return nil, fmt.Errorf("netloc has responded with %s", resp.Status)
		}

		return resp, nil
	})
}

func (h *httpClient) Available() bool {
	return !h.circuitBreaker.Opened()
}

func closeResponse(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}

	io.Copy(io.Discard, resp.Body) // nolint: errcheck
	resp.Body.Close()
}

// NewHTTPClient prepares a new HTTP client, wraps it with rate limiter,
// circuit breaker, sets a user agent etc.
//
// Please see https://pkg.go.dev/golang.org/x/time/rate to get a meaning
// of rate limiter parameters.
//
// A meaning of circuit breaker parameters:
//
// circuitBreakerOpenThreshold - this is a threshold of failures when
// circuit breaker becomes OPEN. So, if you pass 3 here, then after 3
// failures, circuit breaker switches into OPEN state and blocks access
// to a target.
//
// circuitBreakerResetFailuresTimeout - each time period when circuit
// breaker is closed, a failure counter is reset. So, if you pass 10s
// here and make 2 errors then after 10 seconds this counter is going to
// be zero again.
//
// circuitBreakerHalfOpenTimeout - after this time period OPEN circuit
// breaker goes into HALF_OPEN state. Within this state only 1 attempt is
// allowed. If it fails, circuit breaker is OPEN again. If it succeeds,
// it is CLOSED.
func NewHTTPClient(client *http.Client,
	userAgent string,
	rateLimiterInterval time.Duration,
	rateLimitBurst int,
	circuitBreakerOpenThreshold uint32,
	circuitBreakerHalfOpenTimeout, circuitBreakerResetFailuresTimeout time.Duration) HTTPClient {
	return &httpClient{
		userAgent:   userAgent,
		client:      client,
		rateLimiter: rate.NewLimiter(rate.Every(rateLimiterInterval), rateLimitBurst),
		circuitBreaker: newCircuitBreaker(circuitBreakerOpenThreshold,
			circuitBreakerHalfOpenTimeout,
			circuitBreakerResetFailuresTimeout),
	}
}
