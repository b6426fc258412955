package geolib

import (
	"context"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
)

const (
	DefaultHealthProbeTTL     = 10 * time.Second
	DefaultHealthCheckTimeout = 3 * time.Second

	healthStatusOK = "ok"
)

// HealthCheck returns nil if a dependency is alive.
type HealthCheck func(context.Context) error

// Pinger is implemented by providers which can check their own
// availability without spending a paid request.
type Pinger interface {
	Ping(context.Context) error
}

type HealthReport struct {
	Healthy   bool              `json:"healthy"`
	Checks    map[string]string `json:"checks"`
	CheckedAt time.Time         `json:"checkedAt"`
}

// HealthProbe runs all checks concurrently and memoizes the report for
// ttl.
type HealthProbe struct {
	checks  map[string]HealthCheck
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time

	mutex     sync.Mutex
	report    HealthReport
	expiresAt time.Time
}

func (h *HealthProbe) Report(ctx context.Context) HealthReport {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	now := h.now()

	if now.Before(h.expiresAt) {
		return h.report
	}

	h.report = h.run(ctx, now)
	h.expiresAt = now.Add(h.ttl)

	return h.report
}

func (h *HealthProbe) run(ctx context.Context, now time.Time) HealthReport {
	rv := HealthReport{
		Healthy:   true,
		Checks:    make(map[string]string, len(h.checks)),
		CheckedAt: now.UTC(),
	}
	resultsMutex := sync.Mutex{}
	wg := conc.WaitGroup{}

	for name, check := range h.checks {
		name := name
		check := check

		wg.Go(func() {
			checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
			defer cancel()

			status := healthStatusOK
			if err := check(checkCtx); err != nil {
				status = err.Error()
			}

			resultsMutex.Lock()
			defer resultsMutex.Unlock()

			rv.Checks[name] = status
			rv.Healthy = rv.Healthy && status == healthStatusOK
		})
	}

	wg.Wait()

	return rv
}

func NewHealthProbe(ttl time.Duration, checks map[string]HealthCheck) *HealthProbe {
	if ttl <= 0 {
		ttl = DefaultHealthProbeTTL
	}

	return &HealthProbe{
		checks:  checks,
		ttl:     ttl,
		timeout: DefaultHealthCheckTimeout,
		now:     time.Now,
	}
}
