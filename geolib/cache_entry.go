package geolib

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const (
	// PartitionAddresses is the only partition geolocator writes into.
	PartitionAddresses = "addresses"

	// TableFlat keeps v1 flat records.
	TableFlat = "geolocations"

	// TableRich keeps v1.1 city and insights records. Both variants
	// share the same row: insights entry is a superset of city one.
	TableRich = "geolocations_v11"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CacheEntry is a storage representation of the geolocation record.
// Scalar fields are stored as is, nested ones are kept as independent
// opaque blobs so a corruption of one of them does not affect others.
type CacheEntry struct {
	PartitionKey string    `json:"partitionKey"`
	RowKey       string    `json:"rowKey"`
	Timestamp    time.Time `json:"timestamp"`

	Address           string  `json:"address"`
	ContinentCode     string  `json:"continentCode"`
	ContinentName     string  `json:"continentName"`
	CountryCode       string  `json:"countryCode"`
	CountryName       string  `json:"countryName"`
	IsInEuropeanUnion bool    `json:"isInEuropeanUnion"`
	SubdivisionName   string  `json:"subdivisionName"`
	CityName          string  `json:"cityName"`
	PostalCode        string  `json:"postalCode"`
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	AccuracyRadius    uint16  `json:"accuracyRadius"`
	TimeZone          string  `json:"timeZone"`

	Traits        string `json:"traits,omitempty"`
	Subdivisions  string `json:"subdivisions,omitempty"`
	NetworkTraits string `json:"networkTraits,omitempty"`
	Anonymizer    string `json:"anonymizer,omitempty"`
}

// HasAnonymizerData tells if this entry was written by insights lookup
// and not by the city one.
func (c CacheEntry) HasAnonymizerData() bool {
	return c.Anonymizer != ""
}

// Age returns how old is this entry.
func (c CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(c.Timestamp)
}

func EncodeFlat(record GeoLocationRecord, now time.Time) (CacheEntry, error) {
	entry, err := newCacheEntry(record.TranslatedAddress, now)
	if err != nil {
		return entry, err
	}

	entry.Address = record.Address
	entry.ContinentCode = record.ContinentCode
	entry.ContinentName = record.ContinentName
	entry.CountryCode = record.CountryCode
	entry.CountryName = record.CountryName
	entry.IsInEuropeanUnion = record.IsInEuropeanUnion
	entry.SubdivisionName = record.SubdivisionName
	entry.CityName = record.CityName
	entry.PostalCode = record.PostalCode
	entry.Latitude = record.Latitude
	entry.Longitude = record.Longitude
	entry.AccuracyRadius = record.AccuracyRadius
	entry.TimeZone = record.TimeZone

	if len(record.Traits) > 0 {
		if entry.Traits, err = encodeBlob(record.Traits); err != nil {
			return entry, fmt.Errorf("cannot encode traits: %w", err)
		}
	}

	return entry, nil
}

func DecodeFlat(entry CacheEntry) GeoLocationRecord {
	rv := GeoLocationRecord{
		Address:           entry.Address,
		TranslatedAddress: entry.RowKey,
		ContinentCode:     entry.ContinentCode,
		ContinentName:     entry.ContinentName,
		CountryCode:       entry.CountryCode,
		CountryName:       entry.CountryName,
		IsInEuropeanUnion: entry.IsInEuropeanUnion,
		SubdivisionName:   entry.SubdivisionName,
		CityName:          entry.CityName,
		PostalCode:        entry.PostalCode,
		Latitude:          entry.Latitude,
		Longitude:         entry.Longitude,
		AccuracyRadius:    entry.AccuracyRadius,
		TimeZone:          entry.TimeZone,
	}

	if err := decodeBlob(entry.Traits, &rv.Traits); err != nil || rv.Traits == nil {
		rv.Traits = map[string]string{}
	}

	return rv
}

func EncodeCity(record CityLocationRecord, now time.Time) (CacheEntry, error) {
	entry, err := newCacheEntry(record.TranslatedAddress, now)
	if err != nil {
		return entry, err
	}

	entry.Address = record.Address
	entry.ContinentCode = record.ContinentCode
	entry.ContinentName = record.ContinentName
	entry.CountryCode = record.CountryCode
	entry.CountryName = record.CountryName
	entry.IsInEuropeanUnion = record.IsInEuropeanUnion
	entry.CityName = record.CityName
	entry.PostalCode = record.PostalCode
	entry.Latitude = record.Latitude
	entry.Longitude = record.Longitude
	entry.AccuracyRadius = record.AccuracyRadius
	entry.TimeZone = record.TimeZone

	if len(record.Subdivisions) > 0 {
		entry.SubdivisionName = record.Subdivisions[len(record.Subdivisions)-1]

		if entry.Subdivisions, err = encodeBlob(record.Subdivisions); err != nil {
			return entry, fmt.Errorf("cannot encode subdivisions: %w", err)
		}
	}

	if entry.NetworkTraits, err = encodeBlob(record.Network); err != nil {
		return entry, fmt.Errorf("cannot encode network traits: %w", err)
	}

	return entry, nil
}

func DecodeCity(entry CacheEntry) CityLocationRecord {
	rv := CityLocationRecord{
		Address:           entry.Address,
		TranslatedAddress: entry.RowKey,
		ContinentCode:     entry.ContinentCode,
		ContinentName:     entry.ContinentName,
		CountryCode:       entry.CountryCode,
		CountryName:       entry.CountryName,
		IsInEuropeanUnion: entry.IsInEuropeanUnion,
		CityName:          entry.CityName,
		PostalCode:        entry.PostalCode,
		Latitude:          entry.Latitude,
		Longitude:         entry.Longitude,
		AccuracyRadius:    entry.AccuracyRadius,
		TimeZone:          entry.TimeZone,
	}

	if err := decodeBlob(entry.Subdivisions, &rv.Subdivisions); err != nil {
		rv.Subdivisions = nil
	}

	if err := decodeBlob(entry.NetworkTraits, &rv.Network); err != nil {
		rv.Network = NetworkTraits{}
	}

	return rv
}

func EncodeInsights(record InsightsLocationRecord, now time.Time) (CacheEntry, error) {
	entry, err := EncodeCity(record.CityLocationRecord, now)
	if err != nil {
		return entry, err
	}

	if entry.Anonymizer, err = encodeBlob(record.Anonymizer); err != nil {
		return entry, fmt.Errorf("cannot encode anonymizer: %w", err)
	}

	return entry, nil
}

func DecodeInsights(entry CacheEntry) InsightsLocationRecord {
	rv := InsightsLocationRecord{
		CityLocationRecord: DecodeCity(entry),
	}

	if err := decodeBlob(entry.Anonymizer, &rv.Anonymizer); err != nil {
		rv.Anonymizer = Anonymizer{}
	}

	return rv
}

func newCacheEntry(translatedAddress string, now time.Time) (CacheEntry, error) {
	if translatedAddress == "" {
		return CacheEntry{}, ErrMissingCacheKey
	}

	return CacheEntry{
		PartitionKey: PartitionAddresses,
		RowKey:       translatedAddress,
		Timestamp:    now.UTC(),
	}, nil
}

func encodeBlob(value interface{}) (string, error) {
	return json.MarshalToString(value)
}

// decodeBlob fills value from the blob. An empty blob is not an error,
// value stays untouched. On error value can be partially filled, so
// callers have to reset it.
func decodeBlob(blob string, value interface{}) error {
	if blob == "" {
		return nil
	}

	return json.UnmarshalFromString(blob, value)
}
