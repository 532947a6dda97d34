package application_test

import (
	"context"
	"errors"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-arrower/mirrorhub/contexts/projects"
	"github.com/go-arrower/mirrorhub/contexts/systems/internal/application"
	"github.com/go-arrower/mirrorhub/contexts/systems/internal/domain"
	"github.com/go-arrower/mirrorhub/contexts/systems/internal/interfaces/repository"
)

const (
	owner    = domain.UserID("00000000-0000-0000-0000-000000000001")
	stranger = domain.UserID("00000000-0000-0000-0000-000000000002")

	systemIDZero = domain.ID("00000000-0000-0000-0000-000000000000")
	projectID    = projects.ProjectID("10000000-0000-0000-0000-000000000000")
	label        = "mirror.example.org"
)

var (
	ctx = context.Background()

	errNoSuchHost = errors.New("no such host")

	mirrorSystem = domain.System{
		ID:     systemIDZero,
		UserID: owner,
		Label:  label,
		Online: true,
	}

	fedora = projects.Project{ID: projectID, Label: "fedora", Name: "Fedora"}
)

type hosts map[string]netip.Addr

func (h hosts) LookupIPv4(_ context.Context, host string) (netip.Addr, error) {
	if ip, ok := h[host]; ok {
		return ip, nil
	}

	return netip.Addr{}, errNoSuchHost
}

type ipLocator struct {
	calls int
}

func (l *ipLocator) Locate(_ context.Context, ip netip.Addr) (domain.IPRecord, error) {
	l.calls++

	if ip.String() == "192.0.2.99" {
		return domain.IPRecord{}, nil
	}

	lat, lon := 43.7, -79.4

	return domain.IPRecord{
		Country:     "Canada",
		CountryCode: "CA",
		City:        "Toronto",
		Region:      "Ontario",
		Latitude:    &lat,
		Longitude:   &lon,
	}, nil
}

type regionGeocoder struct {
	calls int
}

func (g *regionGeocoder) Geocode(_ context.Context, _ []string) (domain.RegionMatch, error) {
	g.calls++

	return domain.RegionMatch{
		Address:  "Springfield, Illinois, US",
		Location: &domain.Point{Latitude: 39.8, Longitude: -89.6},
	}, nil
}

type projectsAPI map[projects.ProjectID]projects.Project

func (api projectsAPI) ProjectByID(_ context.Context, id projects.ProjectID) (projects.Project, error) {
	if p, ok := api[id]; ok {
		return p, nil
	}

	return projects.Project{}, projects.ErrNotFound
}

func (api projectsAPI) ProjectByLabel(_ context.Context, label string) (projects.Project, error) {
	for _, p := range api {
		if p.Label == label {
			return p, nil
		}
	}

	return projects.Project{}, projects.ErrNotFound
}

type fixture struct {
	repo      *repository.SystemMemoryRepository
	resources *repository.ResourceMemoryRepository
	resolver  *application.LocationResolver
	ips       *ipLocator
	regions   *regionGeocoder
	projects  projectsAPI
}

func newFixture(t *testing.T, systems ...domain.System) fixture {
	t.Helper()

	repo, err := repository.NewSystemMemoryRepository()
	require.NoError(t, err)

	resources, err := repository.NewResourceMemoryRepository(repo)
	require.NoError(t, err)

	for _, s := range systems {
		require.NoError(t, repo.Save(ctx, s))
	}

	ips := &ipLocator{}
	regions := &regionGeocoder{}
	dns := hosts{
		label:                 netip.MustParseAddr("192.0.2.10"),
		"other.example.org":   netip.MustParseAddr("192.0.2.11"),
		"unknown.example.org": netip.MustParseAddr("192.0.2.99"),
	}

	return fixture{
		repo:      repo,
		resources: resources,
		resolver:  application.NewLocationResolver(domain.NewResolver(dns, ips, regions), 0),
		ips:       ips,
		regions:   regions,
		projects:  projectsAPI{projectID: fedora},
	}
}
