// Package repository persists projects and the permissions on them, in memory or in PostgreSQL.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-arrower/mirrorhub/contexts/projects/internal/domain"
	"github.com/go-arrower/mirrorhub/repository"
)

// NewProjectMemoryRepository returns a domain.Repository keeping all projects in memory.
func NewProjectMemoryRepository(opts ...repository.Option) (*ProjectMemoryRepository, error) {
	repo, err := repository.NewMemoryRepository[domain.Project, domain.ID](opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create project repository: %w", err)
	}

	return &ProjectMemoryRepository{MemoryRepository: repo}, nil
}

type ProjectMemoryRepository struct {
	*repository.MemoryRepository[domain.Project, domain.ID]
}

var _ domain.Repository = (*ProjectMemoryRepository)(nil)

func (repo *ProjectMemoryRepository) Read(ctx context.Context, id domain.ID) (domain.Project, error) {
	project, err := repo.MemoryRepository.Read(ctx, id)

	return project, mapError(err)
}

// Save enforces the unique label, the same way the database does.
func (repo *ProjectMemoryRepository) Save(_ context.Context, project domain.Project) error {
	repo.Lock()
	defer repo.Unlock()

	for id, p := range repo.Data {
		if p.Label == project.Label && id != project.ID {
			return fmt.Errorf("%w: %s", domain.ErrProjectAlreadyExists, project.Label)
		}
	}

	return mapError(repo.SaveLocked(project))
}

func (repo *ProjectMemoryRepository) DeleteByID(ctx context.Context, id domain.ID) error {
	return mapError(repo.MemoryRepository.DeleteByID(ctx, id))
}

func (repo *ProjectMemoryRepository) All(ctx context.Context) ([]domain.Project, error) {
	all, err := repo.MemoryRepository.FindBy(ctx, repository.OrderBy[domain.Project]("label"))

	return all, mapError(err)
}

func (repo *ProjectMemoryRepository) FindByLabel(ctx context.Context, label string) (domain.Project, error) {
	found, err := repo.MemoryRepository.FindBy(ctx, repository.Filter(domain.Project{Label: label}))
	if err != nil {
		return domain.Project{}, mapError(err)
	}

	if len(found) == 0 {
		return domain.Project{}, domain.ErrProjectNotFound
	}

	return found[0], nil
}

func (repo *ProjectMemoryRepository) ExistsByLabel(ctx context.Context, label string) (bool, error) {
	_, err := repo.FindByLabel(ctx, label)
	if errors.Is(err, domain.ErrProjectNotFound) {
		return false, nil
	}

	return err == nil, err
}

// NewGrantMemoryRepository returns a domain.GrantRepository keeping all grants in memory.
func NewGrantMemoryRepository(opts ...repository.Option) (*GrantMemoryRepository, error) {
	repo, err := repository.NewMemoryRepository[domain.Grant, domain.GrantID](opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create grant repository: %w", err)
	}

	return &GrantMemoryRepository{MemoryRepository: repo}, nil
}

type GrantMemoryRepository struct {
	*repository.MemoryRepository[domain.Grant, domain.GrantID]
}

var _ domain.GrantRepository = (*GrantMemoryRepository)(nil)

// Assign stores grant, unless the same permission is granted already.
func (repo *GrantMemoryRepository) Assign(_ context.Context, grant domain.Grant) error {
	repo.Lock()
	defer repo.Unlock()

	for _, g := range repo.Data {
		if g.Permission == grant.Permission && g.UserID == grant.UserID &&
			g.ObjectType == grant.ObjectType && g.ObjectID == grant.ObjectID {
			return nil
		}
	}

	return repo.CreateLocked(grant)
}

func (repo *GrantMemoryRepository) Has(
	ctx context.Context,
	userID domain.UserID,
	permission domain.Permission,
	objectType string,
	objectID string,
) (bool, error) {
	found, err := repo.MemoryRepository.FindBy(ctx, repository.Filter(domain.Grant{
		Permission: permission,
		UserID:     userID,
		ObjectType: objectType,
		ObjectID:   objectID,
	}))

	return len(found) > 0, err
}

func (repo *GrantMemoryRepository) RevokeAll(ctx context.Context, objectType string, objectID string) error {
	grants, err := repo.FindByObject(ctx, objectType, objectID)
	if err != nil {
		return err
	}

	for _, g := range grants {
		if err = repo.MemoryRepository.DeleteByID(ctx, g.ID); err != nil {
			return err
		}
	}

	return nil
}

func (repo *GrantMemoryRepository) FindByObject(
	ctx context.Context,
	objectType string,
	objectID string,
) ([]domain.Grant, error) {
	return repo.MemoryRepository.FindBy(ctx,
		repository.Filter(domain.Grant{ObjectType: objectType, ObjectID: objectID}),
		repository.OrderBy[domain.Grant]("permission"),
	)
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %w", domain.ErrProjectNotFound, err)
	case errors.Is(err, repository.ErrAlreadyExists):
		return fmt.Errorf("%w: %w", domain.ErrProjectAlreadyExists, err)
	default:
		return err
	}
}
