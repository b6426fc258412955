package providers

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/geolocator/geolocator/geolib"
)

const (
	maxmindEndpoint        = "https://geoip.maxmind.com"
	maxmindGeoliteEndpoint = "https://geolite.info"

	maxmindServiceCity     = "city"
	maxmindServiceInsights = "insights"
)

type maxmindNamed struct {
	Code    string            `json:"code"`
	IsoCode string            `json:"iso_code"`
	Names   map[string]string `json:"names"`
}

type maxmindResponse struct {
	City      maxmindNamed `json:"city"`
	Continent maxmindNamed `json:"continent"`
	Country   struct {
		maxmindNamed

		IsInEuropeanUnion bool `json:"is_in_european_union"`
	} `json:"country"`
	Location struct {
		AccuracyRadius uint16  `json:"accuracy_radius"`
		Latitude       float64 `json:"latitude"`
		Longitude      float64 `json:"longitude"`
		TimeZone       string  `json:"time_zone"`
	} `json:"location"`
	Postal struct {
		Code string `json:"code"`
	} `json:"postal"`
	Subdivisions []maxmindNamed `json:"subdivisions"`
	Traits       struct {
		AutonomousSystemNumber       uint    `json:"autonomous_system_number"`
		AutonomousSystemOrganization string  `json:"autonomous_system_organization"`
		ConnectionType               string  `json:"connection_type"`
		Domain                       string  `json:"domain"`
		ISP                          string  `json:"isp"`
		Organization                 string  `json:"organization"`
		UserType                     string  `json:"user_type"`
		Network                      string  `json:"network"`
		StaticIPScore                float64 `json:"static_ip_score"`
		IsAnycast                    bool    `json:"is_anycast"`
		IsAnonymous                  bool    `json:"is_anonymous"`
		IsAnonymousVPN               bool    `json:"is_anonymous_vpn"`
		IsHostingProvider            bool    `json:"is_hosting_provider"`
		IsPublicProxy                bool    `json:"is_public_proxy"`
		IsResidentialProxy           bool    `json:"is_residential_proxy"`
		IsTorExitNode                bool    `json:"is_tor_exit_node"`
	} `json:"traits"`
	Anonymizer *struct {
		Confidence         int    `json:"confidence"`
		IsAnonymous        bool   `json:"is_anonymous"`
		IsAnonymousVPN     bool   `json:"is_anonymous_vpn"`
		IsHostingProvider  bool   `json:"is_hosting_provider"`
		IsPublicProxy      bool   `json:"is_public_proxy"`
		IsResidentialProxy bool   `json:"is_residential_proxy"`
		IsTorExitNode      bool   `json:"is_tor_exit_node"`
		ProviderName       string `json:"provider_name"`
		NetworkLastSeen    string `json:"network_last_seen"`
	} `json:"anonymizer"`
}

func (m maxmindResponse) city() geolib.CityLocationRecord {
	rv := geolib.CityLocationRecord{
		ContinentCode:     m.Continent.Code,
		ContinentName:     englishName(m.Continent.Names),
		CountryCode:       strings.ToUpper(m.Country.IsoCode),
		CountryName:       englishName(m.Country.Names),
		IsInEuropeanUnion: m.Country.IsInEuropeanUnion,
		CityName:          englishName(m.City.Names),
		PostalCode:        m.Postal.Code,
		Latitude:          m.Location.Latitude,
		Longitude:         m.Location.Longitude,
		AccuracyRadius:    m.Location.AccuracyRadius,
		TimeZone:          m.Location.TimeZone,
		Network: geolib.NetworkTraits{
			AutonomousSystemNumber:       m.Traits.AutonomousSystemNumber,
			AutonomousSystemOrganization: m.Traits.AutonomousSystemOrganization,
			ISP:                          m.Traits.ISP,
			Organization:                 m.Traits.Organization,
			ConnectionType:               m.Traits.ConnectionType,
			Domain:                       m.Traits.Domain,
			UserType:                     m.Traits.UserType,
			Network:                      m.Traits.Network,
			StaticIPScore:                m.Traits.StaticIPScore,
			IsAnycast:                    m.Traits.IsAnycast,
		},
	}

	for _, v := range m.Subdivisions {
		if name := englishName(v.Names); name != "" {
			rv.Subdivisions = append(rv.Subdivisions, name)
		}
	}

	return rv
}

// anonymizer prefers a dedicated anonymizer object. Older responses
// have only trait flags.
func (m maxmindResponse) anonymizer() geolib.Anonymizer {
	if m.Anonymizer != nil {
		return geolib.Anonymizer{
			Confidence:         m.Anonymizer.Confidence,
			IsAnonymous:        m.Anonymizer.IsAnonymous,
			IsAnonymousVPN:     m.Anonymizer.IsAnonymousVPN,
			IsHostingProvider:  m.Anonymizer.IsHostingProvider,
			IsPublicProxy:      m.Anonymizer.IsPublicProxy,
			IsResidentialProxy: m.Anonymizer.IsResidentialProxy,
			IsTorExitNode:      m.Anonymizer.IsTorExitNode,
			ProviderName:       m.Anonymizer.ProviderName,
			NetworkLastSeen:    m.Anonymizer.NetworkLastSeen,
		}
	}

	return geolib.Anonymizer{
		IsAnonymous:        m.Traits.IsAnonymous,
		IsAnonymousVPN:     m.Traits.IsAnonymousVPN,
		IsHostingProvider:  m.Traits.IsHostingProvider,
		IsPublicProxy:      m.Traits.IsPublicProxy,
		IsResidentialProxy: m.Traits.IsResidentialProxy,
		IsTorExitNode:      m.Traits.IsTorExitNode,
	}
}

type maxmindErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

type maxmindProvider struct {
	client     geolib.HTTPClient
	endpoint   string
	accountID  string
	licenseKey string
	geolite    bool
}

func (m maxmindProvider) Name() string {
	return NameMaxmind
}

func (m maxmindProvider) Flat(ctx context.Context, ip net.IP) (geolib.GeoLocationRecord, error) {
	city, err := m.City(ctx, ip)
	if err != nil {
		return geolib.GeoLocationRecord{}, err
	}

	return geolib.NewFlatRecord(city), nil
}

func (m maxmindProvider) City(ctx context.Context, ip net.IP) (geolib.CityLocationRecord, error) {
	resp, err := m.request(ctx, maxmindServiceCity, ip)
	if err != nil {
		return geolib.CityLocationRecord{}, err
	}

	return resp.city(), nil
}

func (m maxmindProvider) Insights(ctx context.Context, ip net.IP) (geolib.InsightsLocationRecord, error) {
	if m.geolite {
		return geolib.InsightsLocationRecord{}, ErrInsightsNotSupported
	}

	resp, err := m.request(ctx, maxmindServiceInsights, ip)
	if err != nil {
		return geolib.InsightsLocationRecord{}, err
	}

	return geolib.InsightsLocationRecord{
		CityLocationRecord: resp.city(),
		Anonymizer:         resp.anonymizer(),
	}, nil
}

// Ping never spends a paid request: it only checks that the client
// accepts requests at all.
func (m maxmindProvider) Ping(_ context.Context) error {
	if client, ok := m.client.(interface{ Available() bool }); ok && !client.Available() {
		return ErrProviderIsUnavailable
	}

	return nil
}

func (m maxmindProvider) request(ctx context.Context, service string, ip net.IP) (maxmindResponse, error) {
	rv := maxmindResponse{}
	url := m.endpoint + "/geoip/v2.1/" + service + "/" + ip.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return rv, fmt.Errorf("cannot build a request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(m.accountID, m.licenseKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return rv, fmt.Errorf("cannot send a request: %w", err)
	}

	defer flushResponse(resp.Body)

	jsonDecoder := json.NewDecoder(bufio.NewReader(resp.Body))

	if resp.StatusCode != http.StatusOK {
		errResponse := maxmindErrorResponse{}

		jsonDecoder.Decode(&errResponse) // nolint: errcheck

		switch errResponse.Code {
		case "IP_ADDRESS_NOT_FOUND", "IP_ADDRESS_RESERVED":
			return rv, fmt.Errorf("%s: %w", errResponse.Error, geolib.ErrAddressNotFound)
		}

		return rv, fmt.Errorf("unexpected status code %d (%s): %s",
			resp.StatusCode, errResponse.Code, errResponse.Error)
	}

	if err := jsonDecoder.Decode(&rv); err != nil {
		return rv, fmt.Errorf("cannot parse a response: %w", err)
	}

	return rv, nil
}

// NewMaxmind returns a provider of MaxMind GeoIP2 web services.
//
// Parameters:
//
// account_id - MaxMind account ID (required)
//
// license_key - MaxMind license key (required)
//
// geolite - use free GeoLite2 web service. It has no insights.
//
// endpoint - custom base URL of the service.
func NewMaxmind(client geolib.HTTPClient, parameters map[string]string) (geolib.Provider, error) {
	if parameters["account_id"] == "" || parameters["license_key"] == "" {
		return nil, ErrCredentialsAreRequired
	}

	rv := maxmindProvider{
		client:     client,
		endpoint:   maxmindEndpoint,
		accountID:  parameters["account_id"],
		licenseKey: parameters["license_key"],
		geolite:    boolParam(parameters["geolite"]),
	}

	if rv.geolite {
		rv.endpoint = maxmindGeoliteEndpoint
	}

	if endpoint := parameters["endpoint"]; endpoint != "" {
		rv.endpoint = strings.TrimSuffix(endpoint, "/")
	}

	return rv, nil
}
