package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"strings"
	"sync"

	"github.com/ip2location/ip2location-go/v9"

	"github.com/go-arrower/mirrorhub/contexts/systems/internal/domain"
)

var (
	ErrInvalidIP     = errors.New("invalid ip address")
	ErrLocateFailed  = errors.New("locating ip failed")
	ErrUnknownIPDB   = errors.New("unknown ip database provider")
	ErrOpenIPDBError = errors.New("could not open ip database")
)

// IPLocator is a domain.IPLocator backed by a local database file, that has to be closed.
type IPLocator interface {
	domain.IPLocator
	io.Closer
}

// NewIPLocator opens the database of the given provider, "ip2location" or "geoip2".
func NewIPLocator(provider string, dbPath string) (IPLocator, error) { //nolint:ireturn // choose implementation by config
	switch provider {
	case "ip2location":
		return NewIP2Location(dbPath)
	case "geoip2":
		return NewGeoIP2(dbPath)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownIPDB, provider)
	}
}

// NewLazyIPLocator returns an IPLocator that opens the database of provider on the first Locate.
// Resolutions by region hint work without the database file.
func NewLazyIPLocator(provider string, dbPath string) (*LazyIPLocator, error) {
	switch provider {
	case "ip2location", "geoip2":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownIPDB, provider)
	}

	return &LazyIPLocator{provider: provider, dbPath: dbPath}, nil
}

// LazyIPLocator is safe for concurrent use. If the database can not be opened,
// Locate fails and the next call tries again.
type LazyIPLocator struct {
	provider string
	dbPath   string

	mu      sync.Mutex
	locator IPLocator
}

var _ IPLocator = (*LazyIPLocator)(nil)

func (l *LazyIPLocator) Locate(ctx context.Context, ip netip.Addr) (domain.IPRecord, error) {
	locator, err := l.open()
	if err != nil {
		return domain.IPRecord{}, err
	}

	return locator.Locate(ctx, ip) //nolint:wrapcheck // same package
}

func (l *LazyIPLocator) open() (IPLocator, error) { //nolint:ireturn // choose implementation by config
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locator == nil {
		locator, err := NewIPLocator(l.provider, l.dbPath)
		if err != nil {
			return nil, err
		}

		l.locator = locator
	}

	return l.locator, nil
}

func (l *LazyIPLocator) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locator == nil {
		return nil
	}

	err := l.locator.Close()
	l.locator = nil

	return err //nolint:wrapcheck // same package
}

// NewIP2Location opens an IP2Location BIN database.
//
// This site or product includes IP2Location LITE data available from
// <a href="https://lite.ip2location.com">https://lite.ip2location.com</a>.
func NewIP2Location(dbPath string) (*IP2Location, error) {
	const defaultPath = "data/IP2LOCATION-LITE-DB11.BIN"

	if dbPath == "" {
		dbPath = defaultPath
	}

	db, err := ip2location.OpenDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpenIPDBError, dbPath, err)
	}

	return &IP2Location{db: db}, nil
}

type IP2Location struct {
	db *ip2location.DB
}

var _ IPLocator = (*IP2Location)(nil)

func (l *IP2Location) Locate(_ context.Context, ip netip.Addr) (domain.IPRecord, error) {
	if !ip.IsValid() {
		return domain.IPRecord{}, ErrInvalidIP
	}

	rec, err := l.db.Get_all(ip.String())
	if err != nil {
		return domain.IPRecord{}, fmt.Errorf("%w: %w", ErrLocateFailed, err)
	}

	return fromIP2LocationRecord(rec), nil
}

func (l *IP2Location) Close() error {
	l.db.Close()

	return nil
}

func fromIP2LocationRecord(rec ip2location.IP2Locationrecord) domain.IPRecord {
	r := domain.IPRecord{
		Country:     known(rec.Country_long),
		CountryCode: known(rec.Country_short),
		City:        known(rec.City),
		Region:      known(rec.Region),
		PostalCode:  known(rec.Zipcode),
	}

	// databases without coordinates and unknown addresses return 0,0
	if rec.Latitude != 0 || rec.Longitude != 0 {
		lat, lon := float64(rec.Latitude), float64(rec.Longitude)
		r.Latitude, r.Longitude = &lat, &lon
	}

	return r
}

// known returns the empty string for values the database does not know.
func known(value string) string {
	if value == "-" || strings.HasPrefix(value, "This parameter is unavailable") ||
		strings.HasPrefix(value, "Invalid IP address") {
		return ""
	}

	return value
}
