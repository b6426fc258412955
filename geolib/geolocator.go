package geolib

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultInsightsMaxAge is a default age after which cached insights
// records are refetched.
const DefaultInsightsMaxAge = 7 * 24 * time.Hour

// Opts defines a set of dependencies and options for Geolocator.
// Provider, Store and DNSResolver are mandatory.
type Opts struct {
	Provider    Provider
	Store       Store
	DNSResolver DNSResolver
	Logger      Logger

	// LocalOverrides is a list of hostnames which are always rejected
	// as local. DefaultLocalOverrides is used if empty.
	LocalOverrides []string

	// InsightsMaxAge is DefaultInsightsMaxAge if not set.
	InsightsMaxAge time.Duration

	// HealthProbeTTL is DefaultHealthProbeTTL if not set.
	HealthProbeTTL time.Duration
}

// Geolocator resolves hostnames into geolocation records. It reads a
// cache first and asks a provider only if there is nothing to serve.
// Local and private addresses are never sent anywhere.
type Geolocator struct {
	provider *instrumentedProvider
	store    Store
	resolver *HostnameResolver
	logger   Logger
	health   *HealthProbe

	insightsMaxAge time.Duration
	now            func() time.Time
}

// Lookup returns a flat record. This is what v1 API serves.
func (g *Geolocator) Lookup(ctx context.Context, hostname string) (GeoLocationRecord, error) {
	return executeLookup[GeoLocationRecord](ctx, g, hostname, flatStrategy{
		provider: g.provider,
	})
}

func (g *Geolocator) LookupCity(ctx context.Context, hostname string) (CityLocationRecord, error) {
	return executeLookup[CityLocationRecord](ctx, g, hostname, cityStrategy{
		provider: g.provider,
	})
}

// LookupInsights serves cached records only if they are younger than
// InsightsMaxAge. Anonymizer data changes way more often than a city.
func (g *Geolocator) LookupInsights(ctx context.Context, hostname string) (InsightsLocationRecord, error) {
	return executeLookup[InsightsLocationRecord](ctx, g, hostname, insightsStrategy{
		provider: g.provider,
		maxAge:   g.insightsMaxAge,
	})
}

// Remove deletes a flat cache entry of the given hostname.
func (g *Geolocator) Remove(ctx context.Context, hostname string) error {
	return g.remove(ctx, hostname, TableFlat)
}

// RemoveRich deletes a city/insights cache entry of the given hostname.
func (g *Geolocator) RemoveRich(ctx context.Context, hostname string) error {
	return g.remove(ctx, hostname, TableRich)
}

func (g *Geolocator) remove(ctx context.Context, hostname, tableName string) error {
	hostname = strings.TrimSpace(hostname)

	resolved, err := g.resolve(ctx, hostname, CodeHostnameResolutionFailed)
	if err != nil {
		return g.lookupError(ctx, hostname, err)
	}

	found, err := g.store.Table(tableName).Delete(ctx, PartitionAddresses, resolved)

	switch {
	case err != nil:
		g.logger.CacheError(tableName, resolved, err)

		return g.lookupError(ctx, hostname, fmt.Errorf("cannot delete cache entry: %w", err))
	case !found:
		return newLookupError(CodeNotFound, hostname, nil)
	}

	return nil
}

func (g *Geolocator) UsageStats() []*UsageStats {
	return g.provider.UsageStats()
}

func (g *Geolocator) Health(ctx context.Context) HealthReport {
	return g.health.Report(ctx)
}

func (g *Geolocator) resolve(ctx context.Context, hostname string, failureCode ErrorCode) (string, error) {
	if err := validateHostname(hostname); err != nil {
		return "", err
	}

	resolved, ok := g.resolver.Resolve(ctx, hostname)
	if !ok {
		return "", newLookupError(failureCode, hostname, errCannotResolve)
	}

	return resolved, nil
}

// lookupError converts any error into LookupError. Closed context wins
// over everything else: there is no separate code for cancellation.
func (g *Geolocator) lookupError(ctx context.Context, hostname string, err error) *LookupError {
	var (
		lookupErr *LookupError
		provErr   *providerError
	)

	switch {
	case ctx.Err() != nil:
		lookupErr = newLookupError(CodeInternalError, hostname, fmt.Errorf("%w: %v", ctx.Err(), err))
	case errors.As(err, &lookupErr):
		return lookupErr
	case errors.As(err, &provErr) && isAddressNotFound(err):
		return newLookupError(CodeAddressNotFound, hostname, err)
	case errors.As(err, &provErr):
		lookupErr = newLookupError(CodeGeoIPError, hostname, err)
	default:
		lookupErr = newLookupError(CodeInternalError, hostname, err)
	}

	g.logger.LookupError(hostname, lookupErr.Code, lookupErr.Unwrap())

	return lookupErr
}

// NewGeolocator builds a new Geolocator. Provider is wrapped to collect
// usage statistics, so an original instance is never called directly.
func NewGeolocator(opts Opts) (*Geolocator, error) {
	switch {
	case opts.Provider == nil:
		return nil, errors.New("provider is not defined")
	case opts.Store == nil:
		return nil, errors.New("store is not defined")
	case opts.DNSResolver == nil:
		return nil, errors.New("dns resolver is not defined")
	}

	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	maxAge := opts.InsightsMaxAge
	if maxAge <= 0 {
		maxAge = DefaultInsightsMaxAge
	}

	checks := map[string]HealthCheck{
		"store": opts.Store.Ping,
	}

	if pinger, ok := opts.Provider.(Pinger); ok {
		checks["provider"] = pinger.Ping
	}

	return &Geolocator{
		provider:       newInstrumentedProvider(opts.Provider),
		store:          opts.Store,
		resolver:       NewHostnameResolver(opts.DNSResolver, opts.LocalOverrides),
		logger:         logger,
		health:         NewHealthProbe(opts.HealthProbeTTL, checks),
		insightsMaxAge: maxAge,
		now:            time.Now,
	}, nil
}

type noopLogger struct{}

func (noopLogger) LookupError(string, ErrorCode, error) {}

func (noopLogger) CacheError(string, string, error) {}
