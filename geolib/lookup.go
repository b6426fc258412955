package geolib

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"

	"golang.org/x/net/idna"
)

const maxHostnameLength = 253

var errCannotResolve = errors.New("hostname cannot be resolved")

// lookupStrategy binds a record shape to its table, cache policy and
// provider call. executeLookup does everything else.
type lookupStrategy[T any] interface {
	variant() string
	tableName() string
	// fromCache returns a record and one of cacheResult* values. Only
	// hit results are served.
	fromCache(entry CacheEntry, now time.Time) (T, string)
	fromProvider(ctx context.Context, ip net.IP) (T, error)
	toCache(record T, now time.Time) (CacheEntry, error)
	tag(record T, hostname, ip string) T
}

func executeLookup[T any](ctx context.Context, g *Geolocator, hostname string, strategy lookupStrategy[T]) (T, error) {
	hostname = strings.TrimSpace(hostname)

	rv, err := runLookup(ctx, g, hostname, strategy)
	if err != nil {
		lookupErr := g.lookupError(ctx, hostname, err)

		metricLookups.WithLabelValues(strategy.variant(), lookupOutcome(lookupErr)).Inc()

		var empty T

		return empty, lookupErr
	}

	metricLookups.WithLabelValues(strategy.variant(), lookupOutcome(nil)).Inc()

	return rv, nil
}

func runLookup[T any](ctx context.Context, g *Geolocator, hostname string, strategy lookupStrategy[T]) (T, error) {
	var empty T

	resolved, err := g.resolve(ctx, hostname, CodeInvalidHostname)
	if err != nil {
		return empty, err
	}

	if g.resolver.IsLocalOverride(hostname) || g.resolver.IsPrivateOrReserved(resolved) {
		return empty, newLookupError(CodeLocalAddress, hostname, nil)
	}

	table := g.store.Table(strategy.tableName())
	now := g.now()

	entry, found, err := table.Get(ctx, PartitionAddresses, resolved)

	switch {
	case errors.Is(err, ErrCorruptedEntry):
		metricCache.WithLabelValues(strategy.tableName(), cacheResultError).Inc()
		g.logger.CacheError(strategy.tableName(), resolved, err)
	case err != nil:
		metricCache.WithLabelValues(strategy.tableName(), cacheResultError).Inc()
		g.logger.CacheError(strategy.tableName(), resolved, err)

		return empty, fmt.Errorf("cannot read cache entry: %w", err)
	case found:
		record, result := strategy.fromCache(entry, now)

		metricCache.WithLabelValues(strategy.tableName(), result).Inc()

		if result == cacheResultHit {
			return strategy.tag(record, hostname, resolved), nil
		}
	default:
		metricCache.WithLabelValues(strategy.tableName(), cacheResultMiss).Inc()
	}

	record, err := strategy.fromProvider(ctx, net.ParseIP(resolved))
	if err != nil {
		return empty, &providerError{err: err}
	}

	record = strategy.tag(record, hostname, resolved)

	newEntry, err := strategy.toCache(record, now)
	if err != nil {
		return empty, fmt.Errorf("cannot encode cache entry: %w", err)
	}

	if err := table.Put(ctx, newEntry); err != nil {
		g.logger.CacheError(strategy.tableName(), resolved, err)

		return empty, fmt.Errorf("cannot write cache entry: %w", err)
	}

	return record, nil
}

type flatStrategy struct {
	provider Provider
}

func (f flatStrategy) variant() string {
	return VariantFlat
}

func (f flatStrategy) tableName() string {
	return TableFlat
}

func (f flatStrategy) fromCache(entry CacheEntry, _ time.Time) (GeoLocationRecord, string) {
	return DecodeFlat(entry), cacheResultHit
}

func (f flatStrategy) fromProvider(ctx context.Context, ip net.IP) (GeoLocationRecord, error) {
	return f.provider.Flat(ctx, ip)
}

func (f flatStrategy) toCache(record GeoLocationRecord, now time.Time) (CacheEntry, error) {
	return EncodeFlat(record, now)
}

func (f flatStrategy) tag(record GeoLocationRecord, hostname, ip string) GeoLocationRecord {
	record.Address = hostname
	record.TranslatedAddress = ip

	return record
}

// cityStrategy reads both city and insights rows: insights is a
// superset of city.
type cityStrategy struct {
	provider Provider
}

func (c cityStrategy) variant() string {
	return VariantCity
}

func (c cityStrategy) tableName() string {
	return TableRich
}

func (c cityStrategy) fromCache(entry CacheEntry, _ time.Time) (CityLocationRecord, string) {
	return DecodeCity(entry), cacheResultHit
}

func (c cityStrategy) fromProvider(ctx context.Context, ip net.IP) (CityLocationRecord, error) {
	return c.provider.City(ctx, ip)
}

func (c cityStrategy) toCache(record CityLocationRecord, now time.Time) (CacheEntry, error) {
	return EncodeCity(record, now)
}

func (c cityStrategy) tag(record CityLocationRecord, hostname, ip string) CityLocationRecord {
	record.Address = hostname
	record.TranslatedAddress = ip

	return record
}

type insightsStrategy struct {
	provider Provider
	maxAge   time.Duration
}

func (i insightsStrategy) variant() string {
	return VariantInsights
}

func (i insightsStrategy) tableName() string {
	return TableRich
}

func (i insightsStrategy) fromCache(entry CacheEntry, now time.Time) (InsightsLocationRecord, string) {
	switch {
	case !entry.HasAnonymizerData():
		return InsightsLocationRecord{}, cacheResultMiss
	case entry.Age(now) > i.maxAge:
		return InsightsLocationRecord{}, cacheResultStale
	}

	return DecodeInsights(entry), cacheResultHit
}

func (i insightsStrategy) fromProvider(ctx context.Context, ip net.IP) (InsightsLocationRecord, error) {
	return i.provider.Insights(ctx, ip)
}

func (i insightsStrategy) toCache(record InsightsLocationRecord, now time.Time) (CacheEntry, error) {
	return EncodeInsights(record, now)
}

func (i insightsStrategy) tag(record InsightsLocationRecord, hostname, ip string) InsightsLocationRecord {
	record.Address = hostname
	record.TranslatedAddress = ip

	return record
}

// validateHostname does only syntactic checks, no I/O is done here.
func validateHostname(hostname string) error {
	if hostname == "" {
		return newLookupError(CodeEmptyHostname, hostname, nil)
	}

	if _, err := netip.ParseAddr(hostname); err == nil {
		return nil
	}

	if len(hostname) > maxHostnameLength {
		return newLookupError(CodeInvalidHostname, hostname, nil)
	}

	if _, err := idna.Lookup.ToASCII(strings.TrimSuffix(hostname, ".")); err != nil {
		return newLookupError(CodeInvalidHostname, hostname, err)
	}

	return nil
}
