package main

import (
	"net"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/geolocator/geolocator/dnsresolvers"
	"github.com/geolocator/geolocator/geolib"
	"github.com/geolocator/geolocator/providers"
	"github.com/geolocator/geolocator/stores"
	"github.com/hjson/hjson-go"
	"github.com/juju/errors"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/afero"
)

const (
	DefaultListen                             = "127.0.0.1:8000"
	DefaultHTTPTimeout                        = 10 * time.Second
	DefaultRateLimitInterval                  = 100 * time.Millisecond
	DefaultRateLimitBurst                     = 10
	DefaultCircuitBreakerOpenThreshold        = 5
	DefaultCircuitBreakerHalfOpenTimeout      = time.Minute
	DefaultCircuitBreakerResetFailuresTimeout = 20 * time.Second
	DefaultMemoryStoreSize                    = stores.DefaultMemoryTableSize
	DefaultRedisAddress                       = "127.0.0.1:6379"
	DefaultDNSTimeout                         = 5 * time.Second
	DefaultDNSCacheSize                       = 10_000
	DefaultDNSCacheTTL                        = time.Minute
	DefaultShutdownTimeout                    = 10 * time.Second
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var v interface{}

	if err := json.Unmarshal(b, &v); err != nil {
		return errors.Annotate(err, "cannot unmarshal duration")
	}

	vv, ok := v.(string)
	if !ok {
		return errors.Errorf("incorrect duration: %v", v)
	}

	dur, err := time.ParseDuration(vv)
	if err != nil {
		return errors.Annotate(err, "cannot parse duration")
	}

	d.Duration = dur

	return nil
}

type config struct {
	Listen          string          `json:"listen"`
	BasicAuth       configBasicAuth `json:"basic_auth"`
	InsightsMaxAge  duration        `json:"insights_max_age"`
	HealthProbeTTL  duration        `json:"health_probe_ttl"`
	ShutdownTimeout duration        `json:"shutdown_timeout"`
	LocalOverrides  []string        `json:"local_overrides"`
	Provider        configProvider  `json:"provider"`
	Store           configStore     `json:"store"`
	DNS             configDNS       `json:"dns"`
}

func (c config) GetListen() string {
	if c.Listen == "" {
		return DefaultListen
	}

	return c.Listen
}

func (c config) GetInsightsMaxAge() time.Duration {
	if c.InsightsMaxAge.Duration == 0 {
		return geolib.DefaultInsightsMaxAge
	}

	return c.InsightsMaxAge.Duration
}

func (c config) GetHealthProbeTTL() time.Duration {
	if c.HealthProbeTTL.Duration == 0 {
		return geolib.DefaultHealthProbeTTL
	}

	return c.HealthProbeTTL.Duration
}

func (c config) GetShutdownTimeout() time.Duration {
	if c.ShutdownTimeout.Duration == 0 {
		return DefaultShutdownTimeout
	}

	return c.ShutdownTimeout.Duration
}

func (c config) GetLocalOverrides() []string {
	return c.LocalOverrides
}

type configBasicAuth struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

func (c configBasicAuth) Enabled() bool {
	return c.User != "" || c.Password != ""
}

type configProvider struct {
	Name                               string            `json:"name"`
	RateLimitInterval                  duration          `json:"rate_limit_interval"`
	RateLimitBurst                     uint              `json:"rate_limit_burst"`
	HTTPTimeout                        duration          `json:"http_timeout"`
	CircuitBreakerOpenThreshold        uint32            `json:"circuit_breaker_open_threshold"`
	CircuitBreakerHalfOpenTimeout      duration          `json:"circuit_breaker_half_open_timeout"`
	CircuitBreakerResetFailuresTimeout duration          `json:"circuit_breaker_reset_failures_timeout"`
	SpecificParameters                 map[string]string `json:"specific_parameters"`
}

func (c configProvider) GetName() string {
	return c.Name
}

func (c configProvider) GetRateLimitInterval() time.Duration {
	if c.RateLimitInterval.Duration == 0 {
		return DefaultRateLimitInterval
	}

	return c.RateLimitInterval.Duration
}

func (c configProvider) GetRateLimitBurst() int {
	if c.RateLimitBurst == 0 {
		return DefaultRateLimitBurst
	}

	return int(c.RateLimitBurst)
}

func (c configProvider) GetHTTPTimeout() time.Duration {
	if c.HTTPTimeout.Duration == 0 {
		return DefaultHTTPTimeout
	}

	return c.HTTPTimeout.Duration
}

func (c configProvider) GetCircuitBreakerOpenThreshold() uint32 {
	if c.CircuitBreakerOpenThreshold == 0 {
		return DefaultCircuitBreakerOpenThreshold
	}

	return c.CircuitBreakerOpenThreshold
}

func (c configProvider) GetCircuitBreakerHalfOpenTimeout() time.Duration {
	if c.CircuitBreakerHalfOpenTimeout.Duration == 0 {
		return DefaultCircuitBreakerHalfOpenTimeout
	}

	return c.CircuitBreakerHalfOpenTimeout.Duration
}

func (c configProvider) GetCircuitBreakerResetFailuresTimeout() time.Duration {
	if c.CircuitBreakerResetFailuresTimeout.Duration == 0 {
		return DefaultCircuitBreakerResetFailuresTimeout
	}

	return c.CircuitBreakerResetFailuresTimeout.Duration
}

func (c configProvider) GetSpecificParameters() map[string]string {
	if c.SpecificParameters == nil {
		return map[string]string{}
	}

	return c.SpecificParameters
}

type configStore struct {
	Kind     string   `json:"kind"`
	Path     string   `json:"path"`
	Size     uint     `json:"size"`
	Address  string   `json:"address"`
	Password string   `json:"password"`
	DB       int      `json:"db"`
	TTL      duration `json:"ttl"`
}

func (c configStore) GetKind() string {
	if c.Kind == "" {
		return stores.NameMemory
	}

	return c.Kind
}

func (c configStore) GetSize() int {
	if c.Size == 0 {
		return DefaultMemoryStoreSize
	}

	return int(c.Size)
}

func (c configStore) GetAddress() string {
	if c.Address == "" {
		return DefaultRedisAddress
	}

	return c.Address
}

func (c configStore) GetTTL() time.Duration {
	return c.TTL.Duration
}

type configDNS struct {
	Kind      string   `json:"kind"`
	Servers   []string `json:"servers"`
	Timeout   duration `json:"timeout"`
	PreferGo  bool     `json:"prefer_go"`
	CacheSize uint     `json:"cache_size"`
	CacheTTL  duration `json:"cache_ttl"`
	NoCache   bool     `json:"no_cache"`
}

func (c configDNS) GetKind() string {
	if c.Kind == "" {
		return dnsresolvers.NameSystem
	}

	return c.Kind
}

func (c configDNS) GetTimeout() time.Duration {
	if c.Timeout.Duration == 0 {
		return DefaultDNSTimeout
	}

	return c.Timeout.Duration
}

func (c configDNS) GetCacheSize() uint {
	if c.CacheSize == 0 {
		return DefaultDNSCacheSize
	}

	return c.CacheSize
}

func (c configDNS) GetCacheTTL() time.Duration {
	if c.CacheTTL.Duration == 0 {
		return DefaultDNSCacheTTL
	}

	return c.CacheTTL.Duration
}

// parseConfig reads HJSON or TOML config. TOML is chosen by .toml
// extension, everything else is HJSON (which is also a valid JSON).
func parseConfig(fs afero.Fs, path string) (*config, error) {
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Annotate(err, "cannot read file")
	}

	rawMap := map[string]interface{}{}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(content), &rawMap); err != nil {
			return nil, errors.Annotate(err, "cannot parse toml")
		}
	} else if err := hjson.Unmarshal(content, &rawMap); err != nil {
		return nil, errors.Annotate(err, "cannot parse hjson")
	}

	rawBytes, err := json.Marshal(rawMap)
	if err != nil {
		return nil, errors.Annotate(err, "cannot normalize config")
	}

	conf := &config{}

	if err := json.Unmarshal(rawBytes, conf); err != nil {
		return nil, errors.Annotate(err, "incorrect config structure")
	}

	if err := validateConfig(conf); err != nil {
		return nil, errors.Annotate(err, "invalid value")
	}

	return conf, nil
}

func validateConfig(conf *config) error {
	if _, _, err := net.SplitHostPort(conf.GetListen()); err != nil {
		return errors.Annotate(err, "incorrect host:port for listen")
	}

	switch conf.Provider.GetName() {
	case providers.NameMaxmind, providers.NameMMDB:
	case "":
		return errors.New("provider name is required")
	default:
		return errors.Errorf("unsupported provider name %s", conf.Provider.GetName())
	}

	switch conf.Store.GetKind() {
	case stores.NameMemory, stores.NameRedis:
	case stores.NamePebble, stores.NameSQLite:
		if conf.Store.Path == "" {
			return errors.Errorf("path is required for %s store", conf.Store.GetKind())
		}
	default:
		return errors.Errorf("unsupported store kind %s", conf.Store.GetKind())
	}

	switch conf.DNS.GetKind() {
	case dnsresolvers.NameSystem:
	case dnsresolvers.NameDNS:
		if len(conf.DNS.Servers) == 0 {
			return errors.New("dns servers are required")
		}
	default:
		return errors.Errorf("unsupported dns kind %s", conf.DNS.GetKind())
	}

	return nil
}
