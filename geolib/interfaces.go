package geolib

import (
	"context"
	"net"
	"net/http"
)

// Provider is a source of truth for geolocation data. Usually this is
// some paid API.
//
// If provider has no data for the given address, it has to return an
// error which wraps ErrAddressNotFound. Any other error is treated as a
// generic provider failure.
type Provider interface {
	Name() string
	Flat(context.Context, net.IP) (GeoLocationRecord, error)
	City(context.Context, net.IP) (CityLocationRecord, error)
	Insights(context.Context, net.IP) (InsightsLocationRecord, error)
}

// Table is a key-value table of cache entries. Entries are addressed by
// a partition key and a row key. Put overwrites, Delete returns false if
// there was nothing to delete. Get wraps ErrCorruptedEntry if stored
// payload cannot be decoded.
type Table interface {
	Get(ctx context.Context, partitionKey, rowKey string) (CacheEntry, bool, error)
	Put(ctx context.Context, entry CacheEntry) error
	Delete(ctx context.Context, partitionKey, rowKey string) (bool, error)
}

// Store is a set of tables. Store owns a lifecycle of the connections,
// geolocator never closes it.
type Store interface {
	Table(name string) Table
	Ping(context.Context) error
	Close() error
}

type DNSResolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

type Logger interface {
	LookupError(hostname string, code ErrorCode, err error)
	CacheError(table, rowKey string, err error)
}
