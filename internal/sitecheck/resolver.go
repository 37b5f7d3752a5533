package sitecheck

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/miekg/dns"
)

// Resolver answers whether a host has any address records.
type Resolver interface {
	HasAddress(ctx context.Context, host string) (bool, error)
}

// DNSResolver queries the configured servers directly for A and AAAA records.
type DNSResolver struct {
	Servers []string
	client  *dns.Client
}

// NewDNSResolver builds a resolver using servers ("host:port"), defaulting to
// public resolvers when none are given.
func NewDNSResolver(servers ...string) *DNSResolver {
	if len(servers) == 0 {
		servers = []string{"8.8.8.8:53", "1.1.1.1:53"}
	}
	return &DNSResolver{Servers: servers, client: new(dns.Client)}
}

var errNoServers = errors.New("dns: no servers answered")

// HasAddress reports false only when a server answers authoritatively that the
// name does not exist or has no address records. Transport failures are
// returned as errors.
func (r *DNSResolver) HasAddress(ctx context.Context, host string) (bool, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return false, nil
	}
	if net.ParseIP(host) != nil {
		return true, nil
	}

	lastErr := errNoServers
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		msg := new(dns.Msg)
		msg.SetQuestion(dns.Fqdn(host), qtype)
		msg.RecursionDesired = true

		answered := false
		for _, server := range r.Servers {
			resp, _, err := r.client.ExchangeContext(ctx, msg, server)
			if err != nil {
				lastErr = err
				continue
			}
			if resp == nil {
				continue
			}
			if resp.Rcode == dns.RcodeNameError {
				return false, nil
			}
			if resp.Rcode != dns.RcodeSuccess {
				continue
			}
			answered = true
			if len(resp.Answer) > 0 {
				return true, nil
			}
			break
		}
		if !answered {
			return false, lastErr
		}
	}
	return false, nil
}
