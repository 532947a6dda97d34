// Package repository persists systems and their resources, in memory or in PostgreSQL.
package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-arrower/mirrorhub/contexts/systems/internal/domain"
	"github.com/go-arrower/mirrorhub/repository"
)

// NewSystemMemoryRepository returns a domain.Repository keeping all systems in memory.
func NewSystemMemoryRepository(opts ...repository.Option) (*SystemMemoryRepository, error) {
	repo, err := repository.NewMemoryRepository[domain.System, domain.ID](opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create system repository: %w", err)
	}

	return &SystemMemoryRepository{MemoryRepository: repo}, nil
}

type SystemMemoryRepository struct {
	*repository.MemoryRepository[domain.System, domain.ID]
}

var _ domain.Repository = (*SystemMemoryRepository)(nil)

func (repo *SystemMemoryRepository) Read(ctx context.Context, id domain.ID) (domain.System, error) {
	system, err := repo.MemoryRepository.Read(ctx, id)

	return system, mapError(err)
}

// Save enforces the unique label, the same way the database does.
func (repo *SystemMemoryRepository) Save(_ context.Context, system domain.System) error {
	repo.Lock()
	defer repo.Unlock()

	for id, s := range repo.Data {
		if s.Label == system.Label && id != system.ID {
			return fmt.Errorf("%w: %s", domain.ErrSystemAlreadyExists, system.Label)
		}
	}

	return mapError(repo.SaveLocked(system))
}

func (repo *SystemMemoryRepository) DeleteByID(ctx context.Context, id domain.ID) error {
	return mapError(repo.MemoryRepository.DeleteByID(ctx, id))
}

func (repo *SystemMemoryRepository) All(ctx context.Context) ([]domain.System, error) {
	all, err := repo.MemoryRepository.FindBy(ctx, repository.OrderBy[domain.System]("label"))

	return all, mapError(err)
}

func (repo *SystemMemoryRepository) FindByLabel(_ context.Context, label string) (domain.System, error) {
	repo.Lock()
	defer repo.Unlock()

	for _, s := range repo.Data {
		if s.Label == label {
			return s, nil
		}
	}

	return domain.System{}, domain.ErrSystemNotFound
}

func (repo *SystemMemoryRepository) ExistsByLabel(ctx context.Context, label string) (bool, error) {
	_, err := repo.FindByLabel(ctx, label)
	if errors.Is(err, domain.ErrSystemNotFound) {
		return false, nil
	}

	return err == nil, err
}

// NewResourceMemoryRepository returns a domain.ResourceRepository keeping all resources in memory.
// The mirror list is joined with the systems of systems.
func NewResourceMemoryRepository(
	systems *SystemMemoryRepository,
	opts ...repository.Option,
) (*ResourceMemoryRepository, error) {
	repo, err := repository.NewMemoryRepository[domain.SystemResource, domain.ResourceID](opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create resource repository: %w", err)
	}

	return &ResourceMemoryRepository{MemoryRepository: repo, systems: systems}, nil
}

type ResourceMemoryRepository struct {
	*repository.MemoryRepository[domain.SystemResource, domain.ResourceID]

	systems *SystemMemoryRepository
}

var _ domain.ResourceRepository = (*ResourceMemoryRepository)(nil)

func (repo *ResourceMemoryRepository) Read(ctx context.Context, id domain.ResourceID) (domain.SystemResource, error) {
	res, err := repo.MemoryRepository.Read(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return res, domain.ErrResourceNotFound
	}

	return res, mapError(err)
}

// Create allows a project only once per system.
func (repo *ResourceMemoryRepository) Create(_ context.Context, resource domain.SystemResource) error {
	repo.Lock()
	defer repo.Unlock()

	for _, r := range repo.Data {
		if r.SystemID == resource.SystemID && r.ProjectID == resource.ProjectID {
			return fmt.Errorf("%w: %s", domain.ErrResourceExists, resource.ProjectID)
		}
	}

	return repo.CreateLocked(resource)
}

func (repo *ResourceMemoryRepository) DeleteByID(ctx context.Context, id domain.ResourceID) error {
	err := repo.MemoryRepository.DeleteByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ErrResourceNotFound
	}

	return err
}

func (repo *ResourceMemoryRepository) FindBySystem(ctx context.Context, systemID domain.ID) ([]domain.SystemResource, error) {
	return repo.MemoryRepository.FindBy(ctx, repository.Filter(domain.SystemResource{SystemID: systemID}))
}

func (repo *ResourceMemoryRepository) DeleteBySystem(ctx context.Context, systemID domain.ID) error {
	resources, err := repo.FindBySystem(ctx, systemID)
	if err != nil {
		return err
	}

	for _, r := range resources {
		if err = repo.MemoryRepository.DeleteByID(ctx, r.ID); err != nil {
			return err
		}
	}

	return nil
}

func (repo *ResourceMemoryRepository) Mirrors(ctx context.Context, projectID domain.ProjectID) ([]domain.Mirror, error) {
	resources, err := repo.MemoryRepository.FindBy(ctx,
		repository.Filter(domain.SystemResource{ProjectID: projectID, IncludeInMirrorlist: true}),
	)
	if err != nil {
		return nil, err
	}

	mirrors := []domain.Mirror{}

	for _, r := range resources {
		system, err := repo.systems.Read(ctx, r.SystemID)
		if errors.Is(err, domain.ErrSystemNotFound) {
			continue
		}

		if err != nil {
			return nil, err
		}

		if system.Online {
			mirrors = append(mirrors, domain.Mirror{System: system, Resource: r})
		}
	}

	slices.SortFunc(mirrors, func(a, b domain.Mirror) int {
		return strings.Compare(a.System.Label, b.System.Label)
	})

	return mirrors, nil
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %w", domain.ErrSystemNotFound, err)
	case errors.Is(err, repository.ErrAlreadyExists):
		return fmt.Errorf("%w: %w", domain.ErrSystemAlreadyExists, err)
	default:
		return err
	}
}
