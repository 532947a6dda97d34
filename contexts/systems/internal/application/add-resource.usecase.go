package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-arrower/mirrorhub/app"
	"github.com/go-arrower/mirrorhub/contexts/projects"
	"github.com/go-arrower/mirrorhub/contexts/systems/internal/domain"
)

func NewAddResourceRequestHandler(
	repo domain.Repository,
	resources domain.ResourceRepository,
	projectsAPI projects.API,
) app.Request[AddResourceRequest, AddResourceResponse] {
	return app.NewValidatedRequest[AddResourceRequest, AddResourceResponse](nil, &addResourceRequestHandler{
		repo:      repo,
		resources: resources,
		projects:  projectsAPI,
	})
}

type addResourceRequestHandler struct {
	repo      domain.Repository
	resources domain.ResourceRepository
	projects  projects.API
}

type (
	AddResourceRequest struct {
		UserID    domain.UserID    `validate:"required"`
		SystemID  domain.ID        `validate:"required"`
		ProjectID domain.ProjectID `validate:"required"`
		Protocols []string         `validate:"required,min=1,unique,dive,oneof=http https ftp rsync"`
		Path      string           `validate:"required,max=255"`
		// Hidden resources are not part of the mirror list.
		Hidden bool
	}
	AddResourceResponse struct {
		ResourceID domain.ResourceID
	}
)

func (h *addResourceRequestHandler) H(ctx context.Context, req AddResourceRequest) (AddResourceResponse, error) {
	system, err := h.repo.Read(ctx, req.SystemID)
	if err != nil {
		return AddResourceResponse{}, fmt.Errorf("could not get system: %w", err)
	}

	if !system.IsOwnedBy(req.UserID) {
		return AddResourceResponse{}, fmt.Errorf("%w: user %s may not change system %s",
			domain.ErrForbidden, req.UserID, system.ID)
	}

	project, err := h.projects.ProjectByID(ctx, projects.ProjectID(req.ProjectID))
	if err != nil {
		if errors.Is(err, projects.ErrNotFound) {
			return AddResourceResponse{}, fmt.Errorf("%w: %s", domain.ErrProjectNotFound, req.ProjectID)
		}

		return AddResourceResponse{}, fmt.Errorf("could not get project: %w", err)
	}

	id, err := h.resources.NextID(ctx)
	if err != nil {
		return AddResourceResponse{}, fmt.Errorf("could not get new id: %w", err)
	}

	err = h.resources.Create(ctx, domain.SystemResource{
		ID:                  id,
		UserID:              req.UserID,
		SystemID:            system.ID,
		ProjectID:           domain.ProjectID(project.ID),
		Protocols:           req.Protocols,
		Path:                req.Path,
		IncludeInMirrorlist: !req.Hidden,
	})
	if err != nil {
		return AddResourceResponse{}, fmt.Errorf("could not save resource: %w", err)
	}

	return AddResourceResponse{ResourceID: id}, nil
}
