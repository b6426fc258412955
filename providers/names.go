package providers

const (
	// Identifier for MaxMind GeoIP2 Precision web services.
	NameMaxmind = "maxmind"

	// Identifier for offline MaxMind databases in MMDB format
	// (GeoLite2/GeoIP2 City, ASN and Anonymous IP).
	NameMMDB = "mmdb"
)
