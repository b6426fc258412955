package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/pebble"
	"github.com/geolocator/geolocator/dnsresolvers"
	"github.com/geolocator/geolocator/geolib"
	"github.com/geolocator/geolocator/providers"
	"github.com/geolocator/geolocator/stores"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
)

func makeRootContext() (context.Context, context.CancelFunc) {
	rootCtx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)

	go func() {
		for range sigChan {
			cancel()
		}
	}()

	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	return rootCtx, cancel
}

type closers []io.Closer

// Close closes everything in reverse order of registration.
func (c closers) Close() error {
	errs := make([]error, 0, len(c))

	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

type dependencies struct {
	closers

	provider    geolib.Provider
	store       geolib.Store
	dnsResolver geolib.DNSResolver
}

// makeDependencies builds provider, store and DNS resolver. If any of
// them cannot be built, those which were built already are closed.
func makeDependencies(conf *config, fs afero.Fs) (*dependencies, error) {
	deps := &dependencies{}

	provider, err := makeProvider(conf.Provider, fs)
	if err != nil {
		return nil, fmt.Errorf("cannot initialize provider: %w", err)
	}

	deps.provider = provider

	if closer, ok := provider.(io.Closer); ok {
		deps.closers = append(deps.closers, closer)
	}

	store, err := makeStore(conf.Store)
	if err != nil {
		deps.Close() // nolint: errcheck

		return nil, fmt.Errorf("cannot initialize store: %w", err)
	}

	deps.store = store
	deps.closers = append(deps.closers, store)

	dnsResolver, err := makeDNSResolver(conf.DNS)
	if err != nil {
		deps.Close() // nolint: errcheck

		return nil, fmt.Errorf("cannot initialize dns resolver: %w", err)
	}

	deps.dnsResolver = dnsResolver

	return deps, nil
}

func makeProvider(conf configProvider, fs afero.Fs) (geolib.Provider, error) {
	switch conf.GetName() {
	case providers.NameMaxmind:
		prov, err := providers.NewMaxmind(makeHTTPClient(conf), conf.GetSpecificParameters())
		if err != nil {
			return nil, fmt.Errorf("cannot create maxmind provider: %w", err)
		}

		return prov, nil
	case providers.NameMMDB:
		prov, err := providers.NewMMDB(fs, conf.GetSpecificParameters())
		if err != nil {
			return nil, fmt.Errorf("cannot create mmdb provider: %w", err)
		}

		return prov, nil
	}

	return nil, fmt.Errorf("unsupported provider name: %s", conf.GetName())
}

func makeHTTPClient(conf configProvider) geolib.HTTPClient {
	httpClient := &http.Client{
		Timeout: conf.GetHTTPTimeout(),
	}

	return geolib.NewHTTPClient(httpClient,
		"geolocator/"+version,
		conf.GetRateLimitInterval(),
		conf.GetRateLimitBurst(),
		conf.GetCircuitBreakerOpenThreshold(),
		conf.GetCircuitBreakerHalfOpenTimeout(),
		conf.GetCircuitBreakerResetFailuresTimeout())
}

func makeStore(conf configStore) (geolib.Store, error) {
	switch conf.GetKind() {
	case stores.NameMemory:
		return stores.NewMemory(conf.GetSize())
	case stores.NameRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     conf.GetAddress(),
			Password: conf.Password,
			DB:       conf.DB,
		})

		return stores.NewRedis(client, conf.GetTTL()), nil
	case stores.NamePebble:
		return stores.NewPebble(conf.Path, &pebble.Options{})
	case stores.NameSQLite:
		return stores.NewSQLite(conf.Path)
	}

	return nil, fmt.Errorf("unsupported store kind: %s", conf.GetKind())
}

func makeDNSResolver(conf configDNS) (geolib.DNSResolver, error) {
	var (
		resolver geolib.DNSResolver
		err      error
	)

	switch conf.GetKind() {
	case dnsresolvers.NameSystem:
		resolver = dnsresolvers.NewSystem(conf.PreferGo)
	case dnsresolvers.NameDNS:
		resolver, err = dnsresolvers.NewDNS(conf.Servers, conf.GetTimeout())
	default:
		err = fmt.Errorf("unsupported dns kind: %s", conf.GetKind())
	}

	if err != nil || conf.NoCache {
		return resolver, err
	}

	return dnsresolvers.NewCached(resolver, conf.GetCacheSize(), conf.GetCacheTTL())
}
