package init

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/go-arrower/mirrorhub"
	"github.com/go-arrower/mirrorhub/alog"
	"github.com/go-arrower/mirrorhub/app"
	"github.com/go-arrower/mirrorhub/contexts/projects"
	"github.com/go-arrower/mirrorhub/contexts/projects/internal/application"
	"github.com/go-arrower/mirrorhub/contexts/projects/internal/domain"
	"github.com/go-arrower/mirrorhub/contexts/projects/internal/interfaces/repository"
	"github.com/go-arrower/mirrorhub/contexts/projects/internal/interfaces/web"
	"github.com/go-arrower/mirrorhub/mw"
	arepo "github.com/go-arrower/mirrorhub/repository"
)

const contextName = "projects"

// NewProjectsContext wires the projects Context into di and registers its routes.
func NewProjectsContext(di *mirrorhub.Container) (*ProjectsContext, error) {
	if err := di.EnsureAllDependenciesPresent(); err != nil {
		return nil, fmt.Errorf("could not initialise projects context: %w", err)
	}

	logger := di.Logger.WithGroup(contextName)

	projectRepo, grantRepo, err := newRepositories(di)
	if err != nil {
		return nil, fmt.Errorf("could not initialise projects context: %w", err)
	}

	var db app.TxBeginner
	if pgx := di.PGx(); pgx != nil {
		db = pgx
	}

	tp, mp := di.TraceProvider, di.MeterProvider

	pc := &ProjectsContext{
		app: application.ProjectsApplication{
			CreateProject: app.NewInstrumentedRequest(tp, mp, logger, app.NewTxRequest(db,
				application.NewCreateProjectRequestHandler(logger, projectRepo, grantRepo),
			)),
			UpdateProject: app.NewInstrumentedCommand(tp, mp, logger, app.NewTxCommand(db,
				application.NewUpdateProjectCommandHandler(projectRepo, grantRepo),
			)),
			DeleteProject: app.NewInstrumentedCommand(tp, mp, logger, app.NewTxCommand(db,
				application.NewDeleteProjectCommandHandler(projectRepo, grantRepo),
			)),
			ShowProject: app.NewInstrumentedQuery(tp, mp, logger,
				application.NewShowProjectQueryHandler(projectRepo),
			),
			ListProjects: app.NewInstrumentedQuery(tp, mp, logger,
				application.NewListProjectsQueryHandler(projectRepo),
			),
		},
		logger: logger,
	}

	pc.registerAPIRoutes(di)

	logger.LogAttrs(context.Background(), alog.LevelDebug, "context initialised",
		slog.String("storage", di.Config.Storage.Driver),
	)

	return pc, nil
}

type ProjectsContext struct {
	app application.ProjectsApplication

	logger *slog.Logger
}

var _ projects.API = (*ProjectsContext)(nil)

func (c *ProjectsContext) ProjectByID(ctx context.Context, id projects.ProjectID) (projects.Project, error) {
	return c.show(ctx, application.ShowProjectQuery{ProjectID: domain.ID(id)})
}

func (c *ProjectsContext) ProjectByLabel(ctx context.Context, label string) (projects.Project, error) {
	return c.show(ctx, application.ShowProjectQuery{Label: label})
}

func (c *ProjectsContext) show(ctx context.Context, query application.ShowProjectQuery) (projects.Project, error) {
	res, err := c.app.ShowProject.H(ctx, query)
	if errors.Is(err, domain.ErrProjectNotFound) {
		return projects.Project{}, fmt.Errorf("%w: %w", projects.ErrNotFound, err)
	}

	if err != nil {
		return projects.Project{}, err //nolint:wrapcheck // wrapped by the use case
	}

	p := res.Project

	return projects.Project{
		ID:     projects.ProjectID(p.ID),
		UserID: string(p.UserID),
		Label:  p.Label,
		Name:   p.Name,
		URL:    p.URL,
	}, nil
}

func (c *ProjectsContext) registerAPIRoutes(di *mirrorhub.Container) {
	pc := web.NewProjectController(c.app)

	router := di.WebRouter

	router.GET("/projects", pc.Index())
	router.POST("/projects", pc.Store(), mw.RequireUser)
	router.GET("/projects/:id", pc.Show()).Name = "projects.show"
	router.PUT("/projects/:id", pc.Update(), mw.RequireUser)
	router.DELETE("/projects/:id", pc.Delete(), mw.RequireUser)
}

func newRepositories(di *mirrorhub.Container) (domain.Repository, domain.GrantRepository, error) {
	if di.Config.Storage.Driver == mirrorhub.PostgresStorage {
		projectRepo, err := repository.NewProjectPostgresRepository(di.PGx())
		if err != nil {
			return nil, nil, err //nolint:wrapcheck // wrapped by caller
		}

		grantRepo, err := repository.NewGrantPostgresRepository(di.PGx())
		if err != nil {
			return nil, nil, err //nolint:wrapcheck // wrapped by caller
		}

		return projectRepo, grantRepo, nil
	}

	var opts []arepo.Option

	if dir := di.Config.Storage.Dir; dir != "" {
		store, err := arepo.NewJSONStore(filepath.Join(dir, contextName))
		if err != nil {
			return nil, nil, err //nolint:wrapcheck // wrapped by caller
		}

		opts = append(opts, arepo.WithStore(store))
	}

	projectRepo, err := repository.NewProjectMemoryRepository(opts...)
	if err != nil {
		return nil, nil, err //nolint:wrapcheck // wrapped by caller
	}

	grantRepo, err := repository.NewGrantMemoryRepository(opts...)
	if err != nil {
		return nil, nil, err //nolint:wrapcheck // wrapped by caller
	}

	return projectRepo, grantRepo, nil
}
