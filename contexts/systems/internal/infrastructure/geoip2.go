package infrastructure

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"github.com/oschwald/geoip2-golang"

	"github.com/go-arrower/mirrorhub/contexts/systems/internal/domain"
)

// NewGeoIP2 opens a MaxMind GeoIP2 or GeoLite2 City database.
func NewGeoIP2(dbPath string) (*GeoIP2, error) {
	const defaultPath = "data/GeoLite2-City.mmdb"

	if dbPath == "" {
		dbPath = defaultPath
	}

	reader, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpenIPDBError, dbPath, err)
	}

	return &GeoIP2{reader: reader}, nil
}

type GeoIP2 struct {
	reader *geoip2.Reader
}

var _ IPLocator = (*GeoIP2)(nil)

func (l *GeoIP2) Locate(_ context.Context, ip netip.Addr) (domain.IPRecord, error) {
	if !ip.IsValid() {
		return domain.IPRecord{}, ErrInvalidIP
	}

	city, err := l.reader.City(net.IP(ip.AsSlice()))
	if err != nil {
		return domain.IPRecord{}, fmt.Errorf("%w: %w", ErrLocateFailed, err)
	}

	return fromGeoIP2City(city), nil
}

func (l *GeoIP2) Close() error {
	if err := l.reader.Close(); err != nil {
		return fmt.Errorf("could not close geoip2 database: %w", err)
	}

	return nil
}

const language = "en"

func fromGeoIP2City(city *geoip2.City) domain.IPRecord {
	if city == nil {
		return domain.IPRecord{}
	}

	r := domain.IPRecord{
		Country:     city.Country.Names[language],
		CountryCode: city.Country.IsoCode,
		City:        city.City.Names[language],
		PostalCode:  city.Postal.Code,
	}

	if len(city.Subdivisions) > 0 {
		r.Region = city.Subdivisions[0].Names[language]
	}

	// addresses without a location are returned with 0,0
	if city.Location.Latitude != 0 || city.Location.Longitude != 0 {
		lat, lon := city.Location.Latitude, city.Location.Longitude
		r.Latitude, r.Longitude = &lat, &lon
	}

	return r
}
