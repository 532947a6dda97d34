package domain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/netip"
	"strings"

	"github.com/go-playground/validator/v10"
)

// HostResolver resolves a hostname to its IPv4 address.
// A lookup that times out returns an error wrapping context.DeadlineExceeded.
type HostResolver interface {
	LookupIPv4(ctx context.Context, host string) (netip.Addr, error)
}

// IPLocator looks up the location of an ip address.
// If the address is unknown, it returns an empty IPRecord and no error.
type IPLocator interface {
	Locate(ctx context.Context, ip netip.Addr) (IPRecord, error)
}

// RegionGeocoder looks up a place described by query, e.g. [city, region, country].
// If nothing is found, it returns an empty RegionMatch and no error.
type RegionGeocoder interface {
	Geocode(ctx context.Context, query []string) (RegionMatch, error)
}

type IPRecord struct {
	Country     string
	CountryCode string
	City        string
	Region      string
	PostalCode  string
	Latitude    *float64
	Longitude   *float64
}

func (r IPRecord) IsEmpty() bool {
	return r == IPRecord{}
}

// RegionMatch is the answer of a RegionGeocoder.
// Address is formatted as "{locality}, {state}, {country code}".
type RegionMatch struct {
	Address  string
	Location *Point
}

type Point struct {
	Latitude  float64
	Longitude float64
}

func (p *Point) valid() bool {
	return p != nil &&
		!math.IsNaN(p.Latitude) && !math.IsNaN(p.Longitude) &&
		p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}

// Strategy decides how a Location is resolved, it is either RegionHint or IPOnly.
type Strategy interface {
	strategy()
}

// RegionHint resolves the coordinates of a place given by the user.
type RegionHint struct {
	Country string
	Region  string
	City    string
}

// IPOnly resolves the location from the ip address of the System.
type IPOnly struct{}

func (RegionHint) strategy() {}
func (IPOnly) strategy()     {}

// StrategyFor returns RegionHint, if a country is given, and IPOnly otherwise.
func StrategyFor(country, region, city string) Strategy { //nolint:ireturn // union type
	if country == "" {
		return IPOnly{}
	}

	return RegionHint{Country: country, Region: region, City: city}
}

// Resolver computes the Location of a System.
// It is stateless and makes at most one DNS and one geolocation call per resolution.
type Resolver struct {
	hosts   HostResolver
	ips     IPLocator
	regions RegionGeocoder
}

func NewResolver(hosts HostResolver, ips IPLocator, regions RegionGeocoder) *Resolver {
	return &Resolver{hosts: hosts, ips: ips, regions: regions}
}

// Resolve returns the Location of the host label.
// The IP is always the resolved address of label, the other fields depend on strategy.
// A nil strategy is treated as IPOnly.
func (r *Resolver) Resolve(ctx context.Context, label string, strategy Strategy) (Location, error) {
	ip, err := lookup(ctx, r.hosts, label)
	if err != nil {
		return Location{}, err
	}

	var loc Location

	switch s := strategy.(type) {
	case RegionHint:
		loc, err = r.byRegion(ctx, s)
	case IPOnly, nil:
		loc, err = r.byIP(ctx, ip)
	default:
		return Location{}, fmt.Errorf("unknown strategy %T", strategy) //nolint:err113 // programming error
	}

	if err != nil {
		return Location{}, err
	}

	loc.IP = ip.String()

	return loc, nil
}

func (r *Resolver) byRegion(ctx context.Context, hint RegionHint) (Location, error) {
	query := make([]string, 0, 3) //nolint:mnd // city, region, country

	if hint.City != "" {
		query = append(query, hint.City)
	}

	if hint.Region != "" {
		query = append(query, hint.Region)
	}

	query = append(query, hint.Country)

	match, err := r.regions.Geocode(ctx, query)
	if err != nil {
		return Location{}, fmt.Errorf("could not geocode %q: %w", strings.Join(query, ", "), err)
	}

	if !match.Location.valid() {
		return Location{}, fmt.Errorf("%w from %+v", ErrCoordinateExtraction, match)
	}

	parts := strings.Split(match.Address, ", ")
	if len(parts) < 3 || parts[2] == "" { //nolint:mnd // the third part is the country code
		return Location{}, fmt.Errorf("%w from %q", ErrCountryCodeExtraction, match.Address)
	}

	lat, lon := match.Location.Latitude, match.Location.Longitude

	return Location{
		Latitude:    &lat,
		Longitude:   &lon,
		Country:     hint.Country,
		CountryCode: parts[2],
		City:        hint.City,
		Region:      hint.Region,
	}, nil
}

func (r *Resolver) byIP(ctx context.Context, ip netip.Addr) (Location, error) {
	rec, err := r.ips.Locate(ctx, ip)
	if err != nil {
		return Location{}, fmt.Errorf("could not locate %s: %w", ip, err)
	}

	if rec.IsEmpty() {
		return Location{}, &ValidationError{Field: "location", Err: ErrLocationUnavailable}
	}

	return Location{
		Longitude:   rec.Longitude,
		Latitude:    rec.Latitude,
		Country:     rec.Country,
		CountryCode: rec.CountryCode,
		City:        rec.City,
		Region:      rec.Region,
		PostalCode:  rec.PostalCode,
	}, nil
}

// ValidateHostname checks label with the HostResolver of r, see ValidateHostname.
func (r *Resolver) ValidateHostname(ctx context.Context, label string) error {
	return ValidateHostname(ctx, r.hosts, label)
}

//nolint:gochecknoglobals // validator caches struct information and is safe for concurrent use
var validate = validator.New()

// ValidateHostname returns a ValidationError for the field label, if label is not a valid or
// not a resolvable hostname.
func ValidateHostname(ctx context.Context, hosts HostResolver, label string) error {
	_, err := lookup(ctx, hosts, label)

	return err
}

func lookup(ctx context.Context, hosts HostResolver, label string) (netip.Addr, error) {
	if err := validate.VarCtx(ctx, label, "required,max=128,hostname_rfc1123"); err != nil {
		return netip.Addr{}, &ValidationError{
			Field: "label",
			Err:   fmt.Errorf("%w: %w", ErrUnresolvableHostname, ErrInvalidHostname),
		}
	}

	ip, err := hosts.LookupIPv4(ctx, label)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return netip.Addr{}, fmt.Errorf("could not resolve %s: %w", label, err)
		}

		return netip.Addr{}, &ValidationError{Field: "label", Err: fmt.Errorf("%w: %w", ErrUnresolvableHostname, err)}
	}

	return ip, nil
}
