package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/go-arrower/mirrorhub/alog"
	"github.com/go-arrower/mirrorhub/contexts/systems/internal/domain"
)

var ErrGeocodeFailed = errors.New("geocoding failed")

type NominatimConfig struct {
	// URL of the Nominatim instance, e.g. https://nominatim.openstreetmap.org.
	URL string
	// UserAgent identifies the application, as required by the usage policy.
	UserAgent string
	// RatePerSecond limits the outgoing requests. Zero or less means no limit.
	RatePerSecond float64
	// MaxRetries is the number of retries on network errors, 429, and 5xx responses.
	MaxRetries int
	// InitialInterval is the wait before the first retry, 500ms by default.
	InitialInterval time.Duration

	Client *http.Client
}

// NewNominatim returns a domain.RegionGeocoder using the search API of Nominatim (OpenStreetMap).
func NewNominatim(logger alog.Logger, conf NominatimConfig) *Nominatim {
	if conf.Client == nil {
		conf.Client = http.DefaultClient
	}

	if conf.InitialInterval <= 0 {
		conf.InitialInterval = backoff.DefaultInitialInterval
	}

	limit := rate.Inf
	if conf.RatePerSecond > 0 {
		limit = rate.Limit(conf.RatePerSecond)
	}

	return &Nominatim{
		logger:  logger,
		conf:    conf,
		limiter: rate.NewLimiter(limit, 1),
	}
}

type Nominatim struct {
	logger  alog.Logger
	conf    NominatimConfig
	limiter *rate.Limiter
}

var _ domain.RegionGeocoder = (*Nominatim)(nil)

type (
	nominatimPlace struct {
		Lat     string           `json:"lat"`
		Lon     string           `json:"lon"`
		Name    string           `json:"display_name"` //nolint:tagliatelle // api format
		Address nominatimAddress `json:"address"`
	}
	nominatimAddress struct {
		City         string `json:"city"`
		Town         string `json:"town"`
		Village      string `json:"village"`
		Hamlet       string `json:"hamlet"`
		Municipality string `json:"municipality"`
		State        string `json:"state"`
		CountryCode  string `json:"country_code"` //nolint:tagliatelle // api format
	}
)

func (a nominatimAddress) locality() string {
	for _, l := range []string{a.City, a.Town, a.Village, a.Hamlet, a.Municipality} {
		if l != "" {
			return l
		}
	}

	return ""
}

// Geocode returns the best match for query. The address is formatted as "{locality}, {state}, {COUNTRY CODE}",
// with empty parts kept, so the country code is always the third part.
func (n *Nominatim) Geocode(ctx context.Context, query []string) (domain.RegionMatch, error) {
	q := strings.Join(query, ", ")

	policy := backoff.NewExponentialBackOff(backoff.WithInitialInterval(n.conf.InitialInterval))
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(max(n.conf.MaxRetries, 0))), ctx) //nolint:gosec,lll // not negative

	places, err := backoff.RetryNotifyWithData(
		func() ([]nominatimPlace, error) { return n.search(ctx, q) },
		retry,
		func(err error, wait time.Duration) {
			n.logger.Log(ctx, alog.LevelInfo, "retry geocoding",
				slog.String("query", q),
				slog.Duration("wait", wait),
				slog.String("err", err.Error()),
			)
		},
	)
	if err != nil {
		return domain.RegionMatch{}, err
	}

	if len(places) == 0 {
		return domain.RegionMatch{}, nil
	}

	return fromNominatimPlace(places[0]), nil
}

func (n *Nominatim) search(ctx context.Context, query string) ([]nominatimPlace, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: %w", ErrGeocodeFailed, err))
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		strings.TrimSuffix(n.conf.URL, "/")+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: %w", ErrGeocodeFailed, err))
	}

	req.Header.Set("User-Agent", n.conf.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.conf.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(fmt.Errorf("%w: %w", ErrGeocodeFailed, err))
		}

		return nil, fmt.Errorf("%w: %w", ErrGeocodeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		_, _ = io.Copy(io.Discard, resp.Body)

		return nil, fmt.Errorf("%w: %s", ErrGeocodeFailed, resp.Status)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, backoff.Permanent(fmt.Errorf("%w: %s", ErrGeocodeFailed, resp.Status))
	}

	var places []nominatimPlace
	if err = json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: invalid response: %w", ErrGeocodeFailed, err))
	}

	return places, nil
}

// fromNominatimPlace leaves the Location nil, if the coordinates can not be parsed.
func fromNominatimPlace(place nominatimPlace) domain.RegionMatch {
	match := domain.RegionMatch{
		Address: fmt.Sprintf("%s, %s, %s",
			place.Address.locality(),
			place.Address.State,
			strings.ToUpper(place.Address.CountryCode),
		),
	}

	lat, errLat := strconv.ParseFloat(place.Lat, 64)
	lon, errLon := strconv.ParseFloat(place.Lon, 64)

	if errLat == nil && errLon == nil {
		match.Location = &domain.Point{Latitude: lat, Longitude: lon}
	}

	return match
}
