package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/go-arrower/mirrorhub/contexts/projects/internal/domain"
	"github.com/go-arrower/mirrorhub/postgres"
	"github.com/go-arrower/mirrorhub/repository"
)

var ErrMissingConnection = errors.New("missing db connection")

//nolint:gochecknoglobals // squirrel recommends this
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func NewProjectPostgresRepository(db postgres.Querier) (*ProjectPostgresRepository, error) {
	if db == nil {
		return nil, ErrMissingConnection
	}

	repo, err := repository.NewPostgresRepository[domain.Project, domain.ID](db)
	if err != nil {
		return nil, fmt.Errorf("could not create project repository: %w", err)
	}

	return &ProjectPostgresRepository{PostgresRepository: repo}, nil
}

type ProjectPostgresRepository struct {
	*repository.PostgresRepository[domain.Project, domain.ID]
}

var _ domain.Repository = (*ProjectPostgresRepository)(nil)

func (repo *ProjectPostgresRepository) Read(ctx context.Context, id domain.ID) (domain.Project, error) {
	project, err := repo.PostgresRepository.Read(ctx, id)

	return project, mapError(err)
}

func (repo *ProjectPostgresRepository) Save(ctx context.Context, project domain.Project) error {
	return mapError(repo.PostgresRepository.Save(ctx, project))
}

func (repo *ProjectPostgresRepository) DeleteByID(ctx context.Context, id domain.ID) error {
	return mapError(repo.PostgresRepository.DeleteByID(ctx, id))
}

func (repo *ProjectPostgresRepository) All(ctx context.Context) ([]domain.Project, error) {
	all, err := repo.PostgresRepository.FindBy(ctx, repository.OrderBy[domain.Project]("label"))

	return all, mapError(err)
}

func (repo *ProjectPostgresRepository) FindByLabel(ctx context.Context, label string) (domain.Project, error) {
	found, err := repo.PostgresRepository.FindBy(ctx, repository.Filter(domain.Project{Label: label}))
	if err != nil {
		return domain.Project{}, mapError(err)
	}

	if len(found) == 0 {
		return domain.Project{}, domain.ErrProjectNotFound
	}

	return found[0], nil
}

func (repo *ProjectPostgresRepository) ExistsByLabel(ctx context.Context, label string) (bool, error) {
	_, err := repo.FindByLabel(ctx, label)
	if errors.Is(err, domain.ErrProjectNotFound) {
		return false, nil
	}

	return err == nil, err
}

func NewGrantPostgresRepository(db postgres.Querier) (*GrantPostgresRepository, error) {
	if db == nil {
		return nil, ErrMissingConnection
	}

	repo, err := repository.NewPostgresRepository[domain.Grant, domain.GrantID](db,
		repository.WithTable("permission_grants"),
	)
	if err != nil {
		return nil, fmt.Errorf("could not create grant repository: %w", err)
	}

	return &GrantPostgresRepository{PostgresRepository: repo}, nil
}

type GrantPostgresRepository struct {
	*repository.PostgresRepository[domain.Grant, domain.GrantID]
}

var _ domain.GrantRepository = (*GrantPostgresRepository)(nil)

func (repo *GrantPostgresRepository) Assign(ctx context.Context, grant domain.Grant) error {
	sql, args, err := psql.Insert(repo.Table).
		Columns(repo.Columns()...).
		Values(grant.ID, grant.Permission, grant.UserID, grant.ObjectType, grant.ObjectID).
		Suffix("ON CONFLICT (permission, user_id, object_type, object_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: could not build query: %w", repository.ErrStorage, err)
	}

	if _, err = repo.Conn(ctx).Exec(ctx, sql, args...); err != nil {
		return repository.MapError(err)
	}

	return nil
}

func (repo *GrantPostgresRepository) Has(
	ctx context.Context,
	userID domain.UserID,
	permission domain.Permission,
	objectType string,
	objectID string,
) (bool, error) {
	found, err := repo.PostgresRepository.FindBy(ctx, repository.Filter(domain.Grant{
		Permission: permission,
		UserID:     userID,
		ObjectType: objectType,
		ObjectID:   objectID,
	}))

	return len(found) > 0, err
}

func (repo *GrantPostgresRepository) RevokeAll(ctx context.Context, objectType string, objectID string) error {
	sql, args, err := psql.Delete(repo.Table).
		Where(squirrel.Eq{"object_type": objectType, "object_id": objectID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: could not build query: %w", repository.ErrStorage, err)
	}

	if _, err = repo.Conn(ctx).Exec(ctx, sql, args...); err != nil {
		return repository.MapError(err)
	}

	return nil
}

func (repo *GrantPostgresRepository) FindByObject(
	ctx context.Context,
	objectType string,
	objectID string,
) ([]domain.Grant, error) {
	return repo.PostgresRepository.FindBy(ctx,
		repository.Filter(domain.Grant{ObjectType: objectType, ObjectID: objectID}),
		repository.OrderBy[domain.Grant]("permission"),
	)
}
