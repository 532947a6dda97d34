// Package infrastructure implements the lookups the Resolver depends on: DNS, ip geolocation, and region geocoding.
package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"

	"github.com/miekg/dns"

	"github.com/go-arrower/mirrorhub/contexts/systems/internal/domain"
)

var (
	ErrNoAddress = errors.New("no ipv4 address")
	ErrDNSQuery  = errors.New("dns query failed")
)

// NewHostResolver returns a DNSResolver querying nameserver, or the SystemResolver if nameserver is empty.
func NewHostResolver(nameserver string) domain.HostResolver { //nolint:ireturn // choose implementation by config
	if nameserver == "" {
		return NewSystemResolver()
	}

	return NewDNSResolver(nameserver)
}

// SystemResolver resolves hosts the way the operating system does, including /etc/hosts.
type SystemResolver struct {
	resolver *net.Resolver
}

func NewSystemResolver() *SystemResolver {
	return &SystemResolver{resolver: net.DefaultResolver}
}

var _ domain.HostResolver = (*SystemResolver)(nil)

func (r *SystemResolver) LookupIPv4(ctx context.Context, host string) (netip.Addr, error) {
	ips, err := r.resolver.LookupNetIP(ctx, "ip4", host)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("could not lookup %s: %w", host, timedOut(err))
	}

	for _, ip := range ips {
		if ip = ip.Unmap(); ip.Is4() {
			return ip, nil
		}
	}

	return netip.Addr{}, fmt.Errorf("%w for %s", ErrNoAddress, host)
}

// DNSResolver sends A queries to a single nameserver.
type DNSResolver struct {
	client     *dns.Client
	nameserver string
}

// NewDNSResolver queries nameserver, given as host or host:port. The port defaults to 53.
func NewDNSResolver(nameserver string) *DNSResolver {
	if _, _, err := net.SplitHostPort(nameserver); err != nil {
		nameserver = net.JoinHostPort(nameserver, "53")
	}

	return &DNSResolver{
		client:     &dns.Client{Net: "udp"},
		nameserver: nameserver,
	}
}

var _ domain.HostResolver = (*DNSResolver)(nil)

// LookupIPv4 returns the first A record of the answer section. CNAMEs are followed by the nameserver.
func (r *DNSResolver) LookupIPv4(ctx context.Context, host string) (netip.Addr, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), dns.TypeA)
	msg.RecursionDesired = true

	in, _, err := r.client.ExchangeContext(ctx, msg, r.nameserver)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %s: %w", ErrDNSQuery, host, timedOut(err))
	}

	if in.Rcode != dns.RcodeSuccess {
		return netip.Addr{}, fmt.Errorf("%w: %s: %s", ErrDNSQuery, host, dns.RcodeToString[in.Rcode])
	}

	for _, rr := range in.Answer {
		if a, ok := rr.(*dns.A); ok {
			if ip, ok := netip.AddrFromSlice(a.A); ok {
				return ip.Unmap(), nil
			}
		}
	}

	return netip.Addr{}, fmt.Errorf("%w for %s", ErrNoAddress, host)
}

// timedOut marks network timeouts as context.DeadlineExceeded, so a slow nameserver
// is not mistaken for an unresolvable hostname.
func timedOut(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
	}

	return err
}
