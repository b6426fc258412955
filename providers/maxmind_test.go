package providers_test

import (
	"context"
	"net"
	"net/http"
	"testing"

	"github.com/geolocator/geolocator/geolib"
	"github.com/geolocator/geolocator/providers"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/suite"
)

const maxmindInsightsResponse = `{
  "city": {"geoname_id": 4749005, "names": {"en": "Ashburn", "ru": "Ашберн"}},
  "continent": {"code": "NA", "names": {"en": "North America"}},
  "country": {"iso_code": "us", "names": {"en": "United States"}},
  "location": {
    "accuracy_radius": 1000,
    "latitude": 39.0469,
    "longitude": -77.4903,
    "time_zone": "America/New_York"
  },
  "postal": {"code": "20149"},
  "subdivisions": [
    {"iso_code": "VA", "names": {"en": "Virginia"}},
    {"iso_code": "LO", "names": {"en": "Loudoun"}}
  ],
  "traits": {
    "autonomous_system_number": 14618,
    "autonomous_system_organization": "AMAZON-AES",
    "isp": "Amazon.com",
    "network": "23.22.0.0/15",
    "user_type": "hosting",
    "is_hosting_provider": true
  }
}`

const maxmindInsightsAnonymizerResponse = `{
  "country": {"iso_code": "DE", "is_in_european_union": true, "names": {"en": "Germany"}},
  "traits": {"is_anonymous": false},
  "anonymizer": {
    "confidence": 99,
    "is_anonymous": true,
    "is_anonymous_vpn": true,
    "provider_name": "nordvpn",
    "network_last_seen": "2026-10-01"
  }
}`

type MockedMaxmindTestSuite struct {
	MockedProviderTestSuite

	prov geolib.Provider
}

func (suite *MockedMaxmindTestSuite) SetupTest() {
	suite.MockedProviderTestSuite.SetupTest()

	prov, err := providers.NewMaxmind(suite.http, map[string]string{
		"account_id":  "42",
		"license_key": "key",
	})

	suite.NoError(err)

	suite.prov = prov
}

func (suite *MockedMaxmindTestSuite) TestName() {
	suite.Equal(providers.NameMaxmind, suite.prov.Name())
}

func (suite *MockedMaxmindTestSuite) TestCredentialsAreRequired() {
	_, err := providers.NewMaxmind(suite.http, map[string]string{
		"account_id": "42",
	})

	suite.ErrorIs(err, providers.ErrCredentialsAreRequired)
}

func (suite *MockedMaxmindTestSuite) TestLookupClosedContext() {
	ctx, cancel := context.WithCancel(context.Background())

	cancel()

	_, err := suite.prov.City(ctx, net.ParseIP("23.22.13.113"))

	suite.Error(err)
}

func (suite *MockedMaxmindTestSuite) TestLookupFailed() {
	httpmock.RegisterResponder("GET",
		"https://geoip.maxmind.com/geoip/v2.1/city/23.22.13.113",
		httpmock.NewStringResponder(http.StatusUnauthorized,
			`{"code": "AUTHORIZATION_INVALID", "error": "invalid license key"}`))

	_, err := suite.prov.City(context.Background(), net.ParseIP("23.22.13.113"))

	suite.Error(err)
	suite.NotErrorIs(err, geolib.ErrAddressNotFound)
}

func (suite *MockedMaxmindTestSuite) TestLookupNotFound() {
	for _, code := range []string{"IP_ADDRESS_NOT_FOUND", "IP_ADDRESS_RESERVED"} {
		code := code

		suite.Run(code, func() {
			httpmock.RegisterResponder("GET",
				"https://geoip.maxmind.com/geoip/v2.1/city/23.22.13.113",
				httpmock.NewStringResponder(http.StatusNotFound,
					`{"code": "`+code+`", "error": "no data"}`))

			_, err := suite.prov.Flat(context.Background(), net.ParseIP("23.22.13.113"))

			suite.ErrorIs(err, geolib.ErrAddressNotFound)
		})
	}
}

func (suite *MockedMaxmindTestSuite) TestLookupBadJSON() {
	httpmock.RegisterResponder("GET",
		"https://geoip.maxmind.com/geoip/v2.1/city/23.22.13.113",
		httpmock.NewStringResponder(http.StatusOK, `{[`))

	_, err := suite.prov.City(context.Background(), net.ParseIP("23.22.13.113"))

	suite.Error(err)
}

func (suite *MockedMaxmindTestSuite) TestCityOk() {
	httpmock.RegisterResponder("GET",
		"https://geoip.maxmind.com/geoip/v2.1/city/23.22.13.113",
		httpmock.NewStringResponder(http.StatusOK, maxmindInsightsResponse))

	result, err := suite.prov.City(context.Background(), net.ParseIP("23.22.13.113"))

	suite.NoError(err)
	suite.Equal("NA", result.ContinentCode)
	suite.Equal("North America", result.ContinentName)
	suite.Equal("US", result.CountryCode)
	suite.Equal("United States", result.CountryName)
	suite.False(result.IsInEuropeanUnion)
	suite.Equal("Ashburn", result.CityName)
	suite.Equal("20149", result.PostalCode)
	suite.Equal([]string{"Virginia", "Loudoun"}, result.Subdivisions)
	suite.InDelta(39.0469, result.Latitude, 0.0001)
	suite.InDelta(-77.4903, result.Longitude, 0.0001)
	suite.EqualValues(1000, result.AccuracyRadius)
	suite.Equal("America/New_York", result.TimeZone)
	suite.EqualValues(14618, result.Network.AutonomousSystemNumber)
	suite.Equal("AMAZON-AES", result.Network.AutonomousSystemOrganization)
	suite.Equal("23.22.0.0/15", result.Network.Network)
	suite.Equal("hosting", result.Network.UserType)
}

func (suite *MockedMaxmindTestSuite) TestFlatOk() {
	httpmock.RegisterResponder("GET",
		"https://geoip.maxmind.com/geoip/v2.1/city/23.22.13.113",
		httpmock.NewStringResponder(http.StatusOK, maxmindInsightsResponse))

	result, err := suite.prov.Flat(context.Background(), net.ParseIP("23.22.13.113"))

	suite.NoError(err)
	suite.Equal("Loudoun", result.SubdivisionName)
	suite.Equal("Amazon.com", result.Traits[geolib.TraitISP])
	suite.Equal("14618", result.Traits[geolib.TraitAutonomousSystemNumber])
}

func (suite *MockedMaxmindTestSuite) TestInsightsFromTraits() {
	httpmock.RegisterResponder("GET",
		"https://geoip.maxmind.com/geoip/v2.1/insights/23.22.13.113",
		httpmock.NewStringResponder(http.StatusOK, maxmindInsightsResponse))

	result, err := suite.prov.Insights(context.Background(), net.ParseIP("23.22.13.113"))

	suite.NoError(err)
	suite.Equal("Ashburn", result.CityName)
	suite.True(result.Anonymizer.IsHostingProvider)
	suite.False(result.Anonymizer.IsAnonymous)
}

func (suite *MockedMaxmindTestSuite) TestInsightsWithAnonymizer() {
	httpmock.RegisterResponder("GET",
		"https://geoip.maxmind.com/geoip/v2.1/insights/5.9.0.1",
		httpmock.NewStringResponder(http.StatusOK, maxmindInsightsAnonymizerResponse))

	result, err := suite.prov.Insights(context.Background(), net.ParseIP("5.9.0.1"))

	suite.NoError(err)
	suite.Equal("DE", result.CountryCode)
	suite.True(result.IsInEuropeanUnion)
	suite.Equal(99, result.Anonymizer.Confidence)
	suite.True(result.Anonymizer.IsAnonymous)
	suite.True(result.Anonymizer.IsAnonymousVPN)
	suite.Equal("nordvpn", result.Anonymizer.ProviderName)
	suite.Equal("2026-10-01", result.Anonymizer.NetworkLastSeen)
}

func (suite *MockedMaxmindTestSuite) TestGeoliteHasNoInsights() {
	prov, err := providers.NewMaxmind(suite.http, map[string]string{
		"account_id":  "42",
		"license_key": "key",
		"geolite":     "yes",
	})

	suite.NoError(err)

	httpmock.RegisterResponder("GET",
		"https://geolite.info/geoip/v2.1/city/23.22.13.113",
		httpmock.NewStringResponder(http.StatusOK, maxmindInsightsResponse))

	result, err := prov.City(context.Background(), net.ParseIP("23.22.13.113"))

	suite.NoError(err)
	suite.Equal("Ashburn", result.CityName)

	_, err = prov.Insights(context.Background(), net.ParseIP("23.22.13.113"))

	suite.ErrorIs(err, providers.ErrInsightsNotSupported)
}

func (suite *MockedMaxmindTestSuite) TestCustomEndpoint() {
	prov, err := providers.NewMaxmind(suite.http, map[string]string{
		"account_id":  "42",
		"license_key": "key",
		"endpoint":    "https://maxmind.example.com/",
	})

	suite.NoError(err)

	httpmock.RegisterResponder("GET",
		"https://maxmind.example.com/geoip/v2.1/city/23.22.13.113",
		httpmock.NewStringResponder(http.StatusOK, maxmindInsightsResponse))

	_, err = prov.City(context.Background(), net.ParseIP("23.22.13.113"))

	suite.NoError(err)
}

func (suite *MockedMaxmindTestSuite) TestPing() {
	pinger, ok := suite.prov.(geolib.Pinger)

	suite.True(ok)
	suite.NoError(pinger.Ping(context.Background()))
}

func TestMockedMaxmind(t *testing.T) {
	suite.Run(t, &MockedMaxmindTestSuite{})
}
