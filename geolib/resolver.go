package geolib

import (
	"context"
	"net/netip"
	"strings"

	"github.com/samber/lo"
)

// DefaultLocalOverrides is a list of hostnames which are always treated
// as local, no matter what DNS says.
var DefaultLocalOverrides = []string{"localhost", "127.0.0.1"}

// HostnameResolver converts hostnames into IP addresses and tells if
// they are local.
type HostnameResolver struct {
	dns       DNSResolver
	overrides []string
}

// IsLocalOverride checks the text as it was given by the client, not
// the resolved address.
func (h *HostnameResolver) IsLocalOverride(text string) bool {
	text = strings.TrimSpace(text)

	return lo.ContainsBy(h.overrides, func(item string) bool {
		return strings.EqualFold(item, text)
	})
}

// IsPrivateOrReserved is true for everything which is not a public IP
// address. Strings which are not IP literals at all are not private:
// these are hostnames.
func (h *HostnameResolver) IsPrivateOrReserved(ipLiteral string) bool {
	switch Classify(ipLiteral) {
	case CategoryPublic, CategoryUnparseable:
		return false
	}

	return true
}

// Resolve returns a canonical IP address of the hostname. IP literals
// are returned as is, without any network I/O. Otherwise, the first
// address DNS has returned is used.
//
// Any failure, including a closed context, is reported as false.
func (h *HostnameResolver) Resolve(ctx context.Context, hostname string) (string, bool) {
	hostname = strings.TrimSpace(hostname)

	if addr, ok := canonicalAddress(hostname); ok {
		return addr, true
	}

	addrs, err := h.dns.LookupHost(ctx, hostname)
	if err != nil || len(addrs) == 0 {
		return "", false
	}

	return canonicalAddress(addrs[0])
}

func canonicalAddress(text string) (string, bool) {
	addr, err := netip.ParseAddr(text)
	if err != nil {
		return "", false
	}

	return addr.Unmap().WithZone("").String(), true
}

func NewHostnameResolver(dns DNSResolver, localOverrides []string) *HostnameResolver {
	if len(localOverrides) == 0 {
		localOverrides = DefaultLocalOverrides
	}

	return &HostnameResolver{
		dns:       dns,
		overrides: lo.Uniq(lo.Map(localOverrides, func(item string, _ int) string {
			return strings.ToLower(strings.TrimSpace(item))
		})),
	}
}
