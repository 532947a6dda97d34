package init

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/go-arrower/mirrorhub"
	"github.com/go-arrower/mirrorhub/alog"
	"github.com/go-arrower/mirrorhub/app"
	"github.com/go-arrower/mirrorhub/contexts/projects"
	"github.com/go-arrower/mirrorhub/contexts/systems"
	"github.com/go-arrower/mirrorhub/contexts/systems/internal/application"
	"github.com/go-arrower/mirrorhub/contexts/systems/internal/domain"
	"github.com/go-arrower/mirrorhub/contexts/systems/internal/infrastructure"
	"github.com/go-arrower/mirrorhub/contexts/systems/internal/interfaces/repository"
	"github.com/go-arrower/mirrorhub/contexts/systems/internal/interfaces/web"
	"github.com/go-arrower/mirrorhub/mw"
	arepo "github.com/go-arrower/mirrorhub/repository"
)

const contextName = "systems"

// Option replaces an adapter to a third party service, e.g. in tests.
type Option func(*adapters)

type adapters struct {
	hosts   domain.HostResolver
	ips     domain.IPLocator
	regions domain.RegionGeocoder
}

func WithHostResolver(hosts domain.HostResolver) Option {
	return func(a *adapters) { a.hosts = hosts }
}

func WithIPLocator(ips domain.IPLocator) Option {
	return func(a *adapters) { a.ips = ips }
}

func WithRegionGeocoder(regions domain.RegionGeocoder) Option {
	return func(a *adapters) { a.regions = regions }
}

// NewSystemsContext wires the systems Context into di and registers its routes.
// projectsAPI is used to look up the projects hosted on a system.
func NewSystemsContext(di *mirrorhub.Container, projectsAPI projects.API, opts ...Option) (*SystemsContext, error) {
	if err := di.EnsureAllDependenciesPresent(); err != nil {
		return nil, fmt.Errorf("could not initialise systems context: %w", err)
	}

	logger := di.Logger.WithGroup(contextName)

	sc := &SystemsContext{logger: logger} //nolint:exhaustruct // app is set below

	a, err := sc.newAdapters(di.Config.Geo, opts)
	if err != nil {
		return nil, fmt.Errorf("could not initialise systems context: %w", err)
	}

	systemRepo, resourceRepo, err := newRepositories(di)
	if err != nil {
		return nil, fmt.Errorf("could not initialise systems context: %w", err)
	}

	resolver := application.NewLocationResolver(
		domain.NewResolver(a.hosts, a.ips, a.regions),
		di.Config.Geo.Timeout,
	)

	var db app.TxBeginner
	if pgx := di.PGx(); pgx != nil {
		db = pgx
	}

	tp, mp := di.TraceProvider, di.MeterProvider

	sc.app = application.SystemsApplication{
		CreateSystem: app.NewInstrumentedRequest(tp, mp, logger, app.NewTxRequest(db,
			application.NewCreateSystemRequestHandler(logger, systemRepo, resolver),
		)),
		UpdateSystem: app.NewInstrumentedCommand(tp, mp, logger, app.NewTxCommand(db,
			application.NewUpdateSystemCommandHandler(systemRepo, resolver),
		)),
		DeleteSystem: app.NewInstrumentedCommand(tp, mp, logger, app.NewTxCommand(db,
			application.NewDeleteSystemCommandHandler(systemRepo, resourceRepo),
		)),
		ShowSystem: app.NewInstrumentedQuery(tp, mp, logger,
			application.NewShowSystemQueryHandler(systemRepo, resourceRepo),
		),
		ListSystems: app.NewInstrumentedQuery(tp, mp, logger,
			application.NewListSystemsQueryHandler(systemRepo),
		),
		PreviewLocation: app.NewInstrumentedQuery(tp, mp, logger,
			application.NewPreviewLocationQueryHandler(resolver),
		),
		AddResource: app.NewInstrumentedRequest(tp, mp, logger, app.NewTxRequest(db,
			application.NewAddResourceRequestHandler(systemRepo, resourceRepo, projectsAPI),
		)),
		RemoveResource: app.NewInstrumentedCommand(tp, mp, logger, app.NewTxCommand(db,
			application.NewRemoveResourceCommandHandler(systemRepo, resourceRepo),
		)),
		MirrorList: app.NewInstrumentedQuery(tp, mp, logger,
			application.NewMirrorListQueryHandler(resourceRepo, projectsAPI),
		),
	}

	sc.registerAPIRoutes(di)

	di.OnShutdown(sc.Shutdown)

	logger.LogAttrs(context.Background(), alog.LevelDebug, "context initialised",
		slog.String("storage", di.Config.Storage.Driver),
		slog.String("ip_provider", di.Config.Geo.IP.Provider),
	)

	return sc, nil
}

type SystemsContext struct {
	app application.SystemsApplication

	logger *slog.Logger

	// closers are the adapters opened by this Context.
	closers []func() error
}

var _ systems.API = (*SystemsContext)(nil)

func (c *SystemsContext) PreviewLocation(
	ctx context.Context,
	label string,
	hint systems.LocationHint,
) (systems.Location, error) {
	res, err := c.app.PreviewLocation.H(ctx, application.PreviewLocationQuery{
		Label:   label,
		Country: hint.Country,
		Region:  hint.Region,
		City:    hint.City,
	})
	if err != nil {
		return systems.Location{}, err //nolint:wrapcheck // wrapped by the use case
	}

	loc := res.Location

	return systems.Location{
		DisplayName: res.DisplayName,
		IP:          loc.IP,
		Longitude:   loc.Longitude,
		Latitude:    loc.Latitude,
		Country:     loc.Country,
		CountryCode: loc.CountryCode,
		City:        loc.City,
		Region:      loc.Region,
		PostalCode:  loc.PostalCode,
	}, nil
}

func (c *SystemsContext) Shutdown(_ context.Context) error {
	for _, closer := range c.closers {
		if err := closer(); err != nil {
			return fmt.Errorf("could not shutdown systems context: %w", err)
		}
	}

	c.closers = nil

	return nil
}

func (c *SystemsContext) registerAPIRoutes(di *mirrorhub.Container) {
	sc := web.NewSystemController(c.app)
	rc := web.NewResourceController(c.app)

	router := di.WebRouter

	router.GET("/systems", sc.Index())
	router.GET("/systems/preview", sc.Preview())
	router.POST("/systems", sc.Store(), mw.RequireUser)
	router.GET("/systems/:id", sc.Show()).Name = "systems.show"
	router.PUT("/systems/:id", sc.Update(), mw.RequireUser)
	router.DELETE("/systems/:id", sc.Delete(), mw.RequireUser)

	router.POST("/systems/:id/resources", rc.Store(), mw.RequireUser)
	router.DELETE("/systems/:id/resources/:resourceID", rc.Delete(), mw.RequireUser)

	router.GET("/projects/:label/mirrors", rc.MirrorList())
}

func (c *SystemsContext) newAdapters(conf mirrorhub.Geo, opts []Option) (adapters, error) {
	a := adapters{} //nolint:exhaustruct // set by opts or config
	for _, opt := range opts {
		opt(&a)
	}

	if a.hosts == nil {
		a.hosts = infrastructure.NewHostResolver(conf.DNS.Nameserver)
	}

	if a.ips == nil {
		ips, err := infrastructure.NewLazyIPLocator(conf.IP.Provider, conf.IP.Database)
		if err != nil {
			return adapters{}, err //nolint:wrapcheck // wrapped by caller
		}

		a.ips = ips
		c.closers = append(c.closers, ips.Close)
	}

	if a.regions == nil {
		a.regions = infrastructure.NewNominatim(c.logger, infrastructure.NominatimConfig{ //nolint:exhaustruct
			URL:           conf.Region.URL,
			UserAgent:     conf.Region.UserAgent,
			RatePerSecond: conf.Region.RatePerSecond,
			MaxRetries:    conf.Region.MaxRetries,
		})
	}

	return a, nil
}

func newRepositories(di *mirrorhub.Container) (domain.Repository, domain.ResourceRepository, error) {
	if di.Config.Storage.Driver == mirrorhub.PostgresStorage {
		systemRepo, err := repository.NewSystemPostgresRepository(di.PGx())
		if err != nil {
			return nil, nil, err //nolint:wrapcheck // wrapped by caller
		}

		resourceRepo, err := repository.NewResourcePostgresRepository(di.PGx())
		if err != nil {
			return nil, nil, err //nolint:wrapcheck // wrapped by caller
		}

		return systemRepo, resourceRepo, nil
	}

	var opts []arepo.Option

	if dir := di.Config.Storage.Dir; dir != "" {
		store, err := arepo.NewJSONStore(filepath.Join(dir, contextName))
		if err != nil {
			return nil, nil, err //nolint:wrapcheck // wrapped by caller
		}

		opts = append(opts, arepo.WithStore(store))
	}

	systemRepo, err := repository.NewSystemMemoryRepository(opts...)
	if err != nil {
		return nil, nil, err //nolint:wrapcheck // wrapped by caller
	}

	resourceRepo, err := repository.NewResourceMemoryRepository(systemRepo, opts...)
	if err != nil {
		return nil, nil, err //nolint:wrapcheck // wrapped by caller
	}

	return systemRepo, resourceRepo, nil
}
