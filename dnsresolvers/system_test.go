package dnsresolvers_test

import (
	"context"
	"testing"

	"github.com/geolocator/geolocator/dnsresolvers"
	"github.com/stretchr/testify/assert"
)

func TestSystemIPLiteral(t *testing.T) {
	addrs, err := dnsresolvers.NewSystem(true).LookupHost(context.Background(), "2001:db8::1")

	assert.NoError(t, err)
	assert.Equal(t, []string{"2001:db8::1"}, addrs)
}
