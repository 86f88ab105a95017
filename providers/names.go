package providers

const (
	// Identifier for ipinfo.io.
	NameIPInfo = "ipinfo"

	// Identifier for ipstack.com
	NameIPStack = "ipstack"

	// Identifier for tools.keycdn.com.
	NameKeyCDN = "keycdn"

	// Identifier for ip2c.org.
	NameIP2C = "ip2c"

	// Identifier for local MaxMind GeoIP2/GeoLite2 City databases.
	NameMaxmind = "maxmind"

	// Identifier for OpenStreetMap Nominatim.
	NameNominatim = "nominatim"

	// Identifier for Mapbox geocoding API.
	NameMapbox = "mapbox"
)
