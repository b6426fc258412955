package dnsresolvers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/geolocator/geolocator/geolib"
)

type cachedResolver struct {
	geolib.DNSResolver

	cache *ristretto.Cache
	ttl   time.Duration
}

// LookupHost caches only successful answers. Failures are retried on
// the next request.
func (c cachedResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	cacheKey := strings.ToLower(host)

	if value, ok := c.cache.Get(cacheKey); ok {
		return value.([]string), nil
	}

	addrs, err := c.DNSResolver.LookupHost(ctx, host)
	if err != nil {
		return nil, err
	}

	c.cache.SetWithTTL(cacheKey, addrs, 1, c.ttl)

	return addrs, nil
}

// NewCached wraps resolver with a cache of itemsCount answers. Each
// answer lives for ttl. Cache is eventually consistent so freshly
// resolved hostname may be resolved again for a short period of time.
func NewCached(resolver geolib.DNSResolver, itemsCount uint, ttl time.Duration) (geolib.DNSResolver, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		MaxCost:     int64(itemsCount),
		NumCounters: 10 * int64(itemsCount),
		Metrics:     false,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot build a cache: %w", err)
	}

	return cachedResolver{
		DNSResolver: resolver,
		cache:       cache,
		ttl:         ttl,
	}, nil
}
