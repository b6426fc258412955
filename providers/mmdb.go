package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync/atomic"

	"github.com/geolocator/geolocator/geolib"
	"github.com/oschwald/geoip2-golang"
	"github.com/oschwald/maxminddb-golang"
	"github.com/spf13/afero"
)

var errDatabaseIsClosed = errors.New("database is closed")

type mmdbProvider struct {
	city        *maxminddb.Reader
	asn         *maxminddb.Reader
	anonymousIP *maxminddb.Reader
	closed      atomic.Bool
}

func (m *mmdbProvider) Name() string {
	return NameMMDB
}

func (m *mmdbProvider) Flat(ctx context.Context, ip net.IP) (geolib.GeoLocationRecord, error) {
	city, err := m.City(ctx, ip)
	if err != nil {
		return geolib.GeoLocationRecord{}, err
	}

	return geolib.NewFlatRecord(city), nil
}

func (m *mmdbProvider) City(_ context.Context, ip net.IP) (geolib.CityLocationRecord, error) {
	if m.closed.Load() {
		return geolib.CityLocationRecord{}, errDatabaseIsClosed
	}

	cityRecord := geoip2.City{}

	network, err := lookupMMDB(m.city, ip, &cityRecord)
	if err != nil {
		return geolib.CityLocationRecord{}, fmt.Errorf("cannot lookup city database: %w", err)
	}

	asnRecord := geoip2.ASN{}

	if m.asn != nil {
		// absence in ASN database is not an error, city is good enough
		if _, err := lookupMMDB(m.asn, ip, &asnRecord); err != nil && !errors.Is(err, geolib.ErrAddressNotFound) {
			return geolib.CityLocationRecord{}, fmt.Errorf("cannot lookup asn database: %w", err)
		}
	}

	return cityFromGeoIP2(&cityRecord, &asnRecord, network), nil
}

func (m *mmdbProvider) Insights(ctx context.Context, ip net.IP) (geolib.InsightsLocationRecord, error) {
	if m.anonymousIP == nil {
		return geolib.InsightsLocationRecord{}, ErrInsightsNotSupported
	}

	city, err := m.City(ctx, ip)
	if err != nil {
		return geolib.InsightsLocationRecord{}, err
	}

	anonymousRecord := geoip2.AnonymousIP{}

	if _, err := lookupMMDB(m.anonymousIP, ip, &anonymousRecord); err != nil && !errors.Is(err, geolib.ErrAddressNotFound) {
		return geolib.InsightsLocationRecord{}, fmt.Errorf("cannot lookup anonymous ip database: %w", err)
	}

	return geolib.InsightsLocationRecord{
		CityLocationRecord: city,
		Anonymizer:         anonymizerFromGeoIP2(&anonymousRecord),
	}, nil
}

func (m *mmdbProvider) Ping(_ context.Context) error {
	if m.closed.Load() {
		return errDatabaseIsClosed
	}

	return nil
}

func (m *mmdbProvider) Close() error {
	if m.closed.Swap(true) {
		return nil
	}

	var errs []error

	for _, v := range []*maxminddb.Reader{m.city, m.asn, m.anonymousIP} {
		if v != nil {
			errs = append(errs, v.Close())
		}
	}

	return errors.Join(errs...)
}

func lookupMMDB(reader *maxminddb.Reader, ip net.IP, record interface{}) (*net.IPNet, error) {
	network, ok, err := reader.LookupNetwork(ip, record)

	switch {
	case err != nil:
		return nil, err
	case !ok:
		return nil, geolib.ErrAddressNotFound
	}

	return network, nil
}

func cityFromGeoIP2(city *geoip2.City, asn *geoip2.ASN, network *net.IPNet) geolib.CityLocationRecord {
	rv := geolib.CityLocationRecord{
		ContinentCode:     city.Continent.Code,
		ContinentName:     englishName(city.Continent.Names),
		CountryCode:       strings.ToUpper(city.Country.IsoCode),
		CountryName:       englishName(city.Country.Names),
		IsInEuropeanUnion: city.Country.IsInEuropeanUnion,
		CityName:          englishName(city.City.Names),
		PostalCode:        city.Postal.Code,
		Latitude:          city.Location.Latitude,
		Longitude:         city.Location.Longitude,
		AccuracyRadius:    city.Location.AccuracyRadius,
		TimeZone:          city.Location.TimeZone,
		Network: geolib.NetworkTraits{
			AutonomousSystemNumber:       asn.AutonomousSystemNumber,
			AutonomousSystemOrganization: asn.AutonomousSystemOrganization,
		},
	}

	if network != nil {
		rv.Network.Network = network.String()
	}

	for _, v := range city.Subdivisions {
		if name := englishName(v.Names); name != "" {
			rv.Subdivisions = append(rv.Subdivisions, name)
		}
	}

	return rv
}

func anonymizerFromGeoIP2(record *geoip2.AnonymousIP) geolib.Anonymizer {
	return geolib.Anonymizer{
		IsAnonymous:        record.IsAnonymous,
		IsAnonymousVPN:     record.IsAnonymousVPN,
		IsHostingProvider:  record.IsHostingProvider,
		IsPublicProxy:      record.IsPublicProxy,
		IsResidentialProxy: record.IsResidentialProxy,
		IsTorExitNode:      record.IsTorExitNode,
	}
}

func openMMDB(fs afero.Fs, path, expectedType string) (*maxminddb.Reader, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("cannot read database file %s: %w", path, err)
	}

	reader, err := maxminddb.FromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("cannot open database %s: %w", path, err)
	}

	if !strings.Contains(reader.Metadata.DatabaseType, expectedType) {
		reader.Close()

		return nil, fmt.Errorf("database %s has type %s, expected %s",
			path, reader.Metadata.DatabaseType, expectedType)
	}

	return reader, nil
}

// NewMMDB returns a provider which works with offline MaxMind databases.
//
// Parameters:
//
// city_path - path to GeoLite2-City or GeoIP2-City database (required)
//
// asn_path - path to GeoLite2-ASN database
//
// anonymous_ip_path - path to GeoIP2-Anonymous-IP database. Without
// it provider does not support insights.
func NewMMDB(fs afero.Fs, parameters map[string]string) (geolib.Provider, error) {
	if parameters["city_path"] == "" {
		return nil, ErrDatabasePathIsRequired
	}

	rv := &mmdbProvider{}
	toOpen := []struct {
		target       **maxminddb.Reader
		path         string
		expectedType string
	}{
		{&rv.city, parameters["city_path"], "City"},
		{&rv.asn, parameters["asn_path"], "ASN"},
		{&rv.anonymousIP, parameters["anonymous_ip_path"], "Anonymous-IP"},
	}

	for _, v := range toOpen {
		if v.path == "" {
			continue
		}

		reader, err := openMMDB(fs, v.path, v.expectedType)
		if err != nil {
			rv.Close() // nolint: errcheck

			return nil, err
		}

		*v.target = reader
	}

	return rv, nil
}
