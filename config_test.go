package main

import (
	"testing"
	"time"

	"github.com/geolocator/geolocator/geolib"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite

	fs afero.Fs
}

func (suite *ConfigTestSuite) SetupTest() {
	suite.fs = afero.NewMemMapFs()
}

func (suite *ConfigTestSuite) write(path, content string) {
	suite.NoError(afero.WriteFile(suite.fs, path, []byte(content), 0o644))
}

func (suite *ConfigTestSuite) TestAbsentFile() {
	_, err := parseConfig(suite.fs, "/etc/geolocator.hjson")

	suite.Error(err)
}

func (suite *ConfigTestSuite) TestHJSONDefaults() {
	suite.write("/etc/geolocator.hjson", `{
  # comments are allowed
  provider: {
    name: mmdb
    specific_parameters: {
      city_path: "/var/lib/GeoLite2-City.mmdb"
    }
  }
}`)

	conf, err := parseConfig(suite.fs, "/etc/geolocator.hjson")

	suite.NoError(err)
	suite.Equal(DefaultListen, conf.GetListen())
	suite.Equal(geolib.DefaultInsightsMaxAge, conf.GetInsightsMaxAge())
	suite.Equal(geolib.DefaultHealthProbeTTL, conf.GetHealthProbeTTL())
	suite.Equal(DefaultShutdownTimeout, conf.GetShutdownTimeout())
	suite.False(conf.BasicAuth.Enabled())
	suite.Equal("mmdb", conf.Provider.GetName())
	suite.Equal("/var/lib/GeoLite2-City.mmdb", conf.Provider.GetSpecificParameters()["city_path"])
	suite.Equal(DefaultRateLimitInterval, conf.Provider.GetRateLimitInterval())
	suite.Equal(DefaultRateLimitBurst, conf.Provider.GetRateLimitBurst())
	suite.Equal(DefaultHTTPTimeout, conf.Provider.GetHTTPTimeout())
	suite.EqualValues(DefaultCircuitBreakerOpenThreshold, conf.Provider.GetCircuitBreakerOpenThreshold())
	suite.Equal("memory", conf.Store.GetKind())
	suite.Equal(DefaultMemoryStoreSize, conf.Store.GetSize())
	suite.Equal("system", conf.DNS.GetKind())
	suite.EqualValues(DefaultDNSCacheSize, conf.DNS.GetCacheSize())
	suite.Equal(DefaultDNSCacheTTL, conf.DNS.GetCacheTTL())
}

func (suite *ConfigTestSuite) TestHJSONFull() {
	suite.write("/etc/geolocator.hjson", `{
  listen: "0.0.0.0:9000"
  basic_auth: {user: "admin", password: "secret"}
  insights_max_age: "48h"
  local_overrides: ["localhost", "router.lan"]
  provider: {
    name: maxmind
    rate_limit_interval: "1s"
    rate_limit_burst: 3
    specific_parameters: {account_id: "42", license_key: "key"}
  }
  store: {kind: "redis", address: "redis:6379", db: 2, ttl: "720h"}
  dns: {kind: "dns", servers: ["1.1.1.1", "8.8.8.8:53"], timeout: "2s"}
}`)

	conf, err := parseConfig(suite.fs, "/etc/geolocator.hjson")

	suite.NoError(err)
	suite.Equal("0.0.0.0:9000", conf.GetListen())
	suite.True(conf.BasicAuth.Enabled())
	suite.Equal(48*time.Hour, conf.GetInsightsMaxAge())
	suite.Equal([]string{"localhost", "router.lan"}, conf.GetLocalOverrides())
	suite.Equal(time.Second, conf.Provider.GetRateLimitInterval())
	suite.Equal(3, conf.Provider.GetRateLimitBurst())
	suite.Equal("redis:6379", conf.Store.GetAddress())
	suite.Equal(2, conf.Store.DB)
	suite.Equal(720*time.Hour, conf.Store.GetTTL())
	suite.Equal([]string{"1.1.1.1", "8.8.8.8:53"}, conf.DNS.Servers)
	suite.Equal(2*time.Second, conf.DNS.GetTimeout())
}

func (suite *ConfigTestSuite) TestTOML() {
	suite.write("/etc/geolocator.toml", `
listen = "127.0.0.1:8080"
health_probe_ttl = "30s"

[provider]
name = "mmdb"

[provider.specific_parameters]
city_path = "/db/city.mmdb"

[store]
kind = "sqlite"
path = "/var/lib/geolocator.db"
`)

	conf, err := parseConfig(suite.fs, "/etc/geolocator.toml")

	suite.NoError(err)
	suite.Equal("127.0.0.1:8080", conf.GetListen())
	suite.Equal(30*time.Second, conf.GetHealthProbeTTL())
	suite.Equal("sqlite", conf.Store.GetKind())
	suite.Equal("/var/lib/geolocator.db", conf.Store.Path)
}

func (suite *ConfigTestSuite) TestInvalid() {
	testData := map[string]string{
		"bad-syntax":     `{provider: {`,
		"no-provider":    `{}`,
		"bad-provider":   `{"provider": {"name": "ipinfo"}}`,
		"bad-listen":     `{"listen": "localhost", "provider": {"name": "mmdb"}}`,
		"bad-duration":   `{"insights_max_age": 7, "provider": {"name": "mmdb"}}`,
		"bad-store":      `{"provider": {"name": "mmdb"}, "store": {"kind": "mongo"}}`,
		"no-store-path":  `{"provider": {"name": "mmdb"}, "store": {"kind": "pebble"}}`,
		"bad-dns":        `{"provider": {"name": "mmdb"}, "dns": {"kind": "doh"}}`,
		"no-dns-servers": `{"provider": {"name": "mmdb"}, "dns": {"kind": "dns"}}`,
	}

	for name, content := range testData {
		content := content

		suite.Run(name, func() {
			suite.write("/etc/geolocator.hjson", content)

			_, err := parseConfig(suite.fs, "/etc/geolocator.hjson")

			suite.Error(err)
		})
	}
}

func TestConfig(t *testing.T) {
	suite.Run(t, &ConfigTestSuite{})
}
