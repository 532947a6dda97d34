package domain_test

import (
	"context"
	"errors"
	"net/netip"

	"github.com/go-arrower/mirrorhub/contexts/systems/internal/domain"
)

const label = "mirror.example.org"

var (
	ctx = context.Background()

	errDNS = errors.New("no such host")

	resolvedIP = netip.MustParseAddr("192.0.2.10")

	toronto = domain.IPRecord{
		Country:     "Canada",
		CountryCode: "CA",
		City:        "Toronto",
		Region:      "Ontario",
		PostalCode:  "M5H",
		Latitude:    ptr(43.7),
		Longitude:   ptr(-79.4),
	}

	springfield = domain.RegionMatch{
		Address:  "Springfield, IL, US",
		Location: &domain.Point{Latitude: 39.8, Longitude: -89.6},
	}
)

func ptr(f float64) *float64 {
	return &f
}

type hostResolver struct {
	ip    netip.Addr
	err   error
	calls int
}

func (r *hostResolver) LookupIPv4(_ context.Context, _ string) (netip.Addr, error) {
	r.calls++

	return r.ip, r.err
}

type ipLocator struct {
	record domain.IPRecord
	err    error
	calls  int
	got    netip.Addr
}

func (l *ipLocator) Locate(_ context.Context, ip netip.Addr) (domain.IPRecord, error) {
	l.calls++
	l.got = ip

	return l.record, l.err
}

type regionGeocoder struct {
	match domain.RegionMatch
	err   error
	calls int
	query []string
}

func (g *regionGeocoder) Geocode(_ context.Context, query []string) (domain.RegionMatch, error) {
	g.calls++
	g.query = query

	return g.match, g.err
}

func resolves() *hostResolver {
	return &hostResolver{ip: resolvedIP}
}
