package geolib

import (
	"net/netip"

	"github.com/asergeyev/nradix"
)

// AddressCategory represents a class of IP address. Geolocator does
// not geolocate anything which is not CategoryPublic: loopbacks,
// private networks, documentation ranges and so on have no meaningful
// location.
type AddressCategory uint8

const (
	CategoryPublic AddressCategory = iota
	CategoryLoopback
	CategoryLinkLocal
	CategoryUniqueLocal
	CategoryCarrierGradeNat
	CategoryClassAPrivate
	CategoryClassBPrivate
	CategoryClassCPrivate
	CategoryIetfProtocolAssignment
	CategoryDocumentationTestNets
	CategoryZeroNetwork
	CategoryMulticast
	CategoryReservedHigh

	// CategoryUnparseable is returned for the strings which are not IP
	// literals at all. Usually these are hostnames.
	CategoryUnparseable
)

var addressCategoryNames = [...]string{
	CategoryPublic:                 "public",
	CategoryLoopback:               "loopback",
	CategoryLinkLocal:              "link_local",
	CategoryUniqueLocal:            "unique_local",
	CategoryCarrierGradeNat:        "carrier_grade_nat",
	CategoryClassAPrivate:          "class_a_private",
	CategoryClassBPrivate:          "class_b_private",
	CategoryClassCPrivate:          "class_c_private",
	CategoryIetfProtocolAssignment: "ietf_protocol_assignment",
	CategoryDocumentationTestNets:  "documentation_test_nets",
	CategoryZeroNetwork:            "zero_network",
	CategoryMulticast:              "multicast",
	CategoryReservedHigh:           "reserved_high",
	CategoryUnparseable:            "unparseable",
}

// String returns a snake_case name of the category.
func (a AddressCategory) String() string {
	if int(a) < len(addressCategoryNames) {
		return addressCategoryNames[a]
	}

	return "unknown"
}

// IsPublic tells if address is globally routable.
func (a AddressCategory) IsPublic() bool {
	return a == CategoryPublic
}

var (
	reservedNetworksV4 = []reservedNetwork{
		{"127.0.0.0/8", CategoryLoopback},
		{"169.254.0.0/16", CategoryLinkLocal},
		{"100.64.0.0/10", CategoryCarrierGradeNat},
		{"10.0.0.0/8", CategoryClassAPrivate},
		{"172.16.0.0/12", CategoryClassBPrivate},
		{"192.168.0.0/16", CategoryClassCPrivate},
		{"192.0.0.0/24", CategoryIetfProtocolAssignment},
		{"192.0.2.0/24", CategoryDocumentationTestNets},
		{"198.51.100.0/24", CategoryDocumentationTestNets},
		{"203.0.113.0/24", CategoryDocumentationTestNets},
		{"0.0.0.0/8", CategoryZeroNetwork},
		{"224.0.0.0/4", CategoryMulticast},
		{"240.0.0.0/4", CategoryReservedHigh},
	}
	reservedNetworksV6 = []reservedNetwork{
		{"::1/128", CategoryLoopback},
		{"fe80::/10", CategoryLinkLocal},
		{"fc00::/7", CategoryUniqueLocal},
	}

	reservedTreeV4 = newReservedTree(reservedNetworksV4)
	reservedTreeV6 = newReservedTree(reservedNetworksV6)
)

type reservedNetwork struct {
	cidr     string
	category AddressCategory
}

func newReservedTree(networks []reservedNetwork) *nradix.Tree {
	tree := nradix.NewTree(len(networks))

	for _, v := range networks {
		if err := tree.AddCIDR(v.cidr, v.category); err != nil {
			panic(err)
		}
	}

	return tree
}

// Classify returns a category of the given IP literal. This function
// is total: it never fails, a garbage input is CategoryUnparseable.
//
// IPv4-mapped IPv6 addresses (::ffff:10.0.0.1) are classified as their
// IPv4 counterparts.
func Classify(ipLiteral string) AddressCategory {
	addr, err := netip.ParseAddr(ipLiteral)
	if err != nil {
		return CategoryUnparseable
	}

	addr = addr.Unmap().WithZone("")
	tree := reservedTreeV4

	if addr.Is6() {
		tree = reservedTreeV6
	}

	value, err := tree.FindCIDR(addr.String())
	if err != nil {
		return CategoryUnparseable
	}

	if category, ok := value.(AddressCategory); ok {
		return category
	}

	return CategoryPublic
}
