package geolib

import (
	"context"
	"errors"
	"net"
	"time"
)

const (
	VariantFlat     = "flat"
	VariantCity     = "city"
	VariantInsights = "insights"
)

// instrumentedProvider counts every call to the wrapped provider in
// usage stats and prometheus metrics.
type instrumentedProvider struct {
	Provider

	flatStats     *UsageStats
	cityStats     *UsageStats
	insightsStats *UsageStats
}

func (i *instrumentedProvider) Flat(ctx context.Context, ip net.IP) (GeoLocationRecord, error) {
	started := time.Now()
	rv, err := i.Provider.Flat(ctx, ip)

	i.observe(i.flatStats, started, err)

	return rv, err
}

func (i *instrumentedProvider) City(ctx context.Context, ip net.IP) (CityLocationRecord, error) {
	started := time.Now()
	rv, err := i.Provider.City(ctx, ip)

	i.observe(i.cityStats, started, err)

	return rv, err
}

func (i *instrumentedProvider) Insights(ctx context.Context, ip net.IP) (InsightsLocationRecord, error) {
	started := time.Now()
	rv, err := i.Provider.Insights(ctx, ip)

	i.observe(i.insightsStats, started, err)

	return rv, err
}

func (i *instrumentedProvider) UsageStats() []*UsageStats {
	return []*UsageStats{i.flatStats, i.cityStats, i.insightsStats}
}

func (i *instrumentedProvider) observe(stats *UsageStats, started time.Time, err error) {
	result := "ok"

	switch {
	case isAddressNotFound(err):
		result = "not_found"
	case err != nil:
		result = "error"
	}

	stats.Used(err)
	metricProviderRequests.WithLabelValues(stats.Provider, stats.Variant, result).Inc()
	metricProviderDuration.WithLabelValues(stats.Provider, stats.Variant).
		Observe(float64(time.Since(started).Milliseconds()))
}

func isAddressNotFound(err error) bool {
	return errors.Is(err, ErrAddressNotFound)
}

func newInstrumentedProvider(provider Provider) *instrumentedProvider {
	name := provider.Name()

	return &instrumentedProvider{
		Provider:      provider,
		flatStats:     &UsageStats{Provider: name, Variant: VariantFlat},
		cityStats:     &UsageStats{Provider: name, Variant: VariantCity},
		insightsStats: &UsageStats{Provider: name, Variant: VariantInsights},
	}
}
