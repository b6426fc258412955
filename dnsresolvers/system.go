package dnsresolvers

import (
	"net"

	"github.com/geolocator/geolocator/geolib"
)

const (
	// Identifier of operating system resolver.
	NameSystem = "system"

	// Identifier of resolver which talks to the given DNS servers
	// directly.
	NameDNS = "dns"
)

// NewSystem returns a resolver of the operating system. If preferGo is
// set, pure Go resolver is used instead of libc one.
func NewSystem(preferGo bool) geolib.DNSResolver {
	return &net.Resolver{
		PreferGo: preferGo,
	}
}
