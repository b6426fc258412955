package geolib

import "strconv"

// GeoLocationRecord is a flat geolocation result, served by v1 API.
//
// Address is a hostname as it was requested, TranslatedAddress is an
// IP address it was resolved to. TranslatedAddress is a cache key so
// it is always set for persisted records.
type GeoLocationRecord struct {
	Address           string            `json:"address"`
	TranslatedAddress string            `json:"translatedAddress"`
	ContinentCode     string            `json:"continentCode"`
	ContinentName     string            `json:"continentName"`
	CountryCode       string            `json:"countryCode"`
	CountryName       string            `json:"countryName"`
	IsInEuropeanUnion bool              `json:"isInEuropeanUnion"`
	SubdivisionName   string            `json:"subdivisionName"`
	CityName          string            `json:"cityName"`
	PostalCode        string            `json:"postalCode"`
	Latitude          float64           `json:"latitude"`
	Longitude         float64           `json:"longitude"`
	AccuracyRadius    uint16            `json:"accuracyRadius"`
	TimeZone          string            `json:"timeZone"`
	Traits            map[string]string `json:"traits"`
}

// CityLocationRecord is a v1.1 city-level result. In comparison with
// GeoLocationRecord it has a full list of subdivisions (from the most
// general to the most specific one) and structured network traits.
type CityLocationRecord struct {
	Address           string        `json:"address"`
	TranslatedAddress string        `json:"translatedAddress"`
	ContinentCode     string        `json:"continentCode"`
	ContinentName     string        `json:"continentName"`
	CountryCode       string        `json:"countryCode"`
	CountryName       string        `json:"countryName"`
	IsInEuropeanUnion bool          `json:"isInEuropeanUnion"`
	Subdivisions      []string      `json:"subdivisions"`
	CityName          string        `json:"cityName"`
	PostalCode        string        `json:"postalCode"`
	Latitude          float64       `json:"latitude"`
	Longitude         float64       `json:"longitude"`
	AccuracyRadius    uint16        `json:"accuracyRadius"`
	TimeZone          string        `json:"timeZone"`
	Network           NetworkTraits `json:"network"`
}

type NetworkTraits struct {
	AutonomousSystemNumber       uint    `json:"autonomousSystemNumber"`
	AutonomousSystemOrganization string  `json:"autonomousSystemOrganization"`
	ISP                          string  `json:"isp"`
	Organization                 string  `json:"organization"`
	ConnectionType               string  `json:"connectionType"`
	Domain                       string  `json:"domain"`
	UserType                     string  `json:"userType"`
	Network                      string  `json:"network"`
	StaticIPScore                float64 `json:"staticIpScore"`
	IsAnycast                    bool    `json:"isAnycast"`
}

// InsightsLocationRecord is a city record enriched with anonymizer
// signals: VPNs, proxies, Tor exit nodes and hosting providers.
type InsightsLocationRecord struct {
	CityLocationRecord

	Anonymizer Anonymizer `json:"anonymizer"`
}

type Anonymizer struct {
	Confidence         int    `json:"confidence"`
	IsAnonymous        bool   `json:"isAnonymous"`
	IsAnonymousVPN     bool   `json:"isAnonymousVpn"`
	IsHostingProvider  bool   `json:"isHostingProvider"`
	IsPublicProxy      bool   `json:"isPublicProxy"`
	IsResidentialProxy bool   `json:"isResidentialProxy"`
	IsTorExitNode      bool   `json:"isTorExitNode"`
	ProviderName       string `json:"providerName"`
	NetworkLastSeen    string `json:"networkLastSeen"`
}

// Trait names used in GeoLocationRecord.Traits.
const (
	TraitAutonomousSystemNumber       = "autonomous_system_number"
	TraitAutonomousSystemOrganization = "autonomous_system_organization"
	TraitISP                          = "isp"
	TraitOrganization                 = "organization"
	TraitConnectionType               = "connection_type"
	TraitDomain                       = "domain"
	TraitUserType                     = "user_type"
	TraitNetwork                      = "network"
)

// NewFlatRecord converts a city record into a flat one. Network traits
// become string traits, empty values are skipped. The most specific
// subdivision becomes SubdivisionName.
func NewFlatRecord(city CityLocationRecord) GeoLocationRecord {
	rv := GeoLocationRecord{
		Address:           city.Address,
		TranslatedAddress: city.TranslatedAddress,
		ContinentCode:     city.ContinentCode,
		ContinentName:     city.ContinentName,
		CountryCode:       city.CountryCode,
		CountryName:       city.CountryName,
		IsInEuropeanUnion: city.IsInEuropeanUnion,
		CityName:          city.CityName,
		PostalCode:        city.PostalCode,
		Latitude:          city.Latitude,
		Longitude:         city.Longitude,
		AccuracyRadius:    city.AccuracyRadius,
		TimeZone:          city.TimeZone,
		Traits:            map[string]string{},
	}

	if len(city.Subdivisions) > 0 {
		rv.SubdivisionName = city.Subdivisions[len(city.Subdivisions)-1]
	}

	if city.Network.AutonomousSystemNumber != 0 {
		rv.Traits[TraitAutonomousSystemNumber] = strconv.FormatUint(uint64(city.Network.AutonomousSystemNumber), 10)
	}

	for k, v := range map[string]string{
		TraitAutonomousSystemOrganization: city.Network.AutonomousSystemOrganization,
		TraitISP:                          city.Network.ISP,
		TraitOrganization:                 city.Network.Organization,
		TraitConnectionType:               city.Network.ConnectionType,
		TraitDomain:                       city.Network.Domain,
		TraitUserType:                     city.Network.UserType,
		TraitNetwork:                      city.Network.Network,
	} {
		if v != "" {
			rv.Traits[k] = v
		}
	}

	return rv
}
