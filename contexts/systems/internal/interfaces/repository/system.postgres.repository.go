package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/go-arrower/mirrorhub/contexts/systems/internal/domain"
	"github.com/go-arrower/mirrorhub/postgres"
	"github.com/go-arrower/mirrorhub/repository"
)

var ErrMissingConnection = errors.New("missing db connection")

//nolint:gochecknoglobals // squirrel recommends this
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func NewSystemPostgresRepository(db postgres.Querier) (*SystemPostgresRepository, error) {
	if db == nil {
		return nil, ErrMissingConnection
	}

	repo, err := repository.NewPostgresRepository[domain.System, domain.ID](db)
	if err != nil {
		return nil, fmt.Errorf("could not create system repository: %w", err)
	}

	return &SystemPostgresRepository{PostgresRepository: repo}, nil
}

type SystemPostgresRepository struct {
	*repository.PostgresRepository[domain.System, domain.ID]
}

var _ domain.Repository = (*SystemPostgresRepository)(nil)

func (repo *SystemPostgresRepository) Read(ctx context.Context, id domain.ID) (domain.System, error) {
	system, err := repo.PostgresRepository.Read(ctx, id)

	return system, mapError(err)
}

func (repo *SystemPostgresRepository) Save(ctx context.Context, system domain.System) error {
	return mapError(repo.PostgresRepository.Save(ctx, system))
}

func (repo *SystemPostgresRepository) DeleteByID(ctx context.Context, id domain.ID) error {
	return mapError(repo.PostgresRepository.DeleteByID(ctx, id))
}

func (repo *SystemPostgresRepository) All(ctx context.Context) ([]domain.System, error) {
	all, err := repo.PostgresRepository.FindBy(ctx, repository.OrderBy[domain.System]("label"))

	return all, mapError(err)
}

func (repo *SystemPostgresRepository) FindByLabel(ctx context.Context, label string) (domain.System, error) {
	found, err := repo.PostgresRepository.FindBy(ctx, repository.Filter(domain.System{Label: label}))
	if err != nil {
		return domain.System{}, mapError(err)
	}

	if len(found) == 0 {
		return domain.System{}, domain.ErrSystemNotFound
	}

	return found[0], nil
}

func (repo *SystemPostgresRepository) ExistsByLabel(ctx context.Context, label string) (bool, error) {
	_, err := repo.FindByLabel(ctx, label)
	if errors.Is(err, domain.ErrSystemNotFound) {
		return false, nil
	}

	return err == nil, err
}

func NewResourcePostgresRepository(db postgres.Querier) (*ResourcePostgresRepository, error) {
	if db == nil {
		return nil, ErrMissingConnection
	}

	repo, err := repository.NewPostgresRepository[domain.SystemResource, domain.ResourceID](db)
	if err != nil {
		return nil, fmt.Errorf("could not create resource repository: %w", err)
	}

	systems, err := repository.NewPostgresRepository[domain.System, domain.ID](db)
	if err != nil {
		return nil, fmt.Errorf("could not create resource repository: %w", err)
	}

	return &ResourcePostgresRepository{PostgresRepository: repo, systems: systems}, nil
}

type ResourcePostgresRepository struct {
	*repository.PostgresRepository[domain.SystemResource, domain.ResourceID]

	systems *repository.PostgresRepository[domain.System, domain.ID]
}

var _ domain.ResourceRepository = (*ResourcePostgresRepository)(nil)

func (repo *ResourcePostgresRepository) Read(ctx context.Context, id domain.ResourceID) (domain.SystemResource, error) {
	res, err := repo.PostgresRepository.Read(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return res, domain.ErrResourceNotFound
	}

	return res, err
}

func (repo *ResourcePostgresRepository) Create(ctx context.Context, resource domain.SystemResource) error {
	err := repo.PostgresRepository.Create(ctx, resource)
	if errors.Is(err, repository.ErrAlreadyExists) {
		return fmt.Errorf("%w: %w", domain.ErrResourceExists, err)
	}

	return err
}

func (repo *ResourcePostgresRepository) DeleteByID(ctx context.Context, id domain.ResourceID) error {
	err := repo.PostgresRepository.DeleteByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ErrResourceNotFound
	}

	return err
}

func (repo *ResourcePostgresRepository) FindBySystem(
	ctx context.Context,
	systemID domain.ID,
) ([]domain.SystemResource, error) {
	return repo.PostgresRepository.FindBy(ctx, repository.Filter(domain.SystemResource{SystemID: systemID}))
}

func (repo *ResourcePostgresRepository) DeleteBySystem(ctx context.Context, systemID domain.ID) error {
	sql, args, err := psql.Delete(repo.Table).Where(squirrel.Eq{"system_id": string(systemID)}).ToSql()
	if err != nil {
		return fmt.Errorf("%w: could not build query: %w", repository.ErrStorage, err)
	}

	if _, err = repo.Conn(ctx).Exec(ctx, sql, args...); err != nil {
		return repository.MapError(err)
	}

	return nil
}

// mirror is a row of the mirror list, scany maps the prefixed columns into the nested structs.
type mirror struct {
	Resource domain.SystemResource `db:"resource"`
	System   domain.System         `db:"system"`
}

func (repo *ResourcePostgresRepository) Mirrors(ctx context.Context, projectID domain.ProjectID) ([]domain.Mirror, error) {
	columns := make([]string, 0, len(repo.Columns())+len(repo.systems.Columns()))
	for _, c := range repo.Columns() {
		columns = append(columns, fmt.Sprintf(`r.%s AS "resource.%s"`, c, c))
	}

	for _, c := range repo.systems.Columns() {
		columns = append(columns, fmt.Sprintf(`s.%s AS "system.%s"`, c, c))
	}

	sql, args, err := psql.Select(columns...).
		From(repo.Table + " r").
		Join(repo.systems.Table + " s ON s.id = r.system_id").
		Where(squirrel.Eq{"r.project_id": string(projectID), "r.include_in_mirrorlist": true, "s.online": true}).
		OrderBy("s.label").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: could not build query: %w", repository.ErrStorage, err)
	}

	var rows []mirror
	if err = pgxscan.Select(ctx, repo.Conn(ctx), &rows, sql, args...); err != nil {
		return nil, repository.MapError(err)
	}

	mirrors := make([]domain.Mirror, 0, len(rows))
	for _, r := range rows {
		mirrors = append(mirrors, domain.Mirror{System: r.System, Resource: r.Resource})
	}

	return mirrors, nil
}
