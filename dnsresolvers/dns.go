package dnsresolvers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/geolocator/geolocator/geolib"
	"github.com/miekg/dns"
)

var (
	// ErrNoServers is returned if resolver has no upstream servers.
	ErrNoServers = errors.New("no dns servers are configured")

	// ErrNoAddresses is returned if hostname has no A and AAAA records.
	ErrNoAddresses = errors.New("hostname has no addresses")
)

type dnsResolver struct {
	client  *dns.Client
	servers []string
}

func (d dnsResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []string{host}, nil
	}

	var (
		addrs   []string
		lastErr error
	)

	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		answers, err := d.query(ctx, host, qtype)
		if err != nil {
			lastErr = err

			continue
		}

		addrs = append(addrs, answers...)
	}

	switch {
	case len(addrs) > 0:
		return addrs, nil
	case lastErr != nil:
		return nil, lastErr
	}

	return nil, fmt.Errorf("%s: %w", host, ErrNoAddresses)
}

// query asks servers one by one until one of them responds.
func (d dnsResolver) query(ctx context.Context, host string, qtype uint16) ([]string, error) {
	msg := &dns.Msg{}
	msg.SetQuestion(dns.Fqdn(host), qtype)

	var lastErr error

	for _, server := range d.servers {
		resp, _, err := d.client.ExchangeContext(ctx, msg, server)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}

			lastErr = fmt.Errorf("cannot query %s: %w", server, err)

			continue
		}

		if resp.Rcode != dns.RcodeSuccess {
			return nil, fmt.Errorf("%s has responded with %s for %s",
				server, dns.RcodeToString[resp.Rcode], host)
		}

		rv := []string{}

		for _, rr := range resp.Answer {
			switch record := rr.(type) {
			case *dns.A:
				rv = append(rv, record.A.String())
			case *dns.AAAA:
				rv = append(rv, record.AAAA.String())
			}
		}

		return rv, nil
	}

	return nil, lastErr
}

// NewDNS returns a resolver which sends queries to the given servers
// (host:port) bypassing operating system. Servers are tried in the given
// order. Port 53 is used if port is omitted.
func NewDNS(servers []string, timeout time.Duration) (geolib.DNSResolver, error) {
	if len(servers) == 0 {
		return nil, ErrNoServers
	}

	rv := dnsResolver{
		client: &dns.Client{
			Timeout: timeout,
		},
		servers: make([]string, 0, len(servers)),
	}

	for _, v := range servers {
		if _, _, err := net.SplitHostPort(v); err != nil {
			v = net.JoinHostPort(v, "53")
		}

		rv.servers = append(rv.servers, v)
	}

	return rv, nil
}
