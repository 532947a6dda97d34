package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-arrower/mirrorhub/alog"
	"github.com/go-arrower/mirrorhub/app"
	"github.com/go-arrower/mirrorhub/contexts/projects/internal/domain"
)

func NewCreateProjectRequestHandler(
	logger alog.Logger,
	repo domain.Repository,
	grants domain.GrantRepository,
) app.Request[CreateProjectRequest, CreateProjectResponse] {
	return app.NewValidatedRequest[CreateProjectRequest, CreateProjectResponse](validate, &createProjectRequestHandler{
		logger: logger,
		repo:   repo,
		grants: grants,
	})
}

type createProjectRequestHandler struct {
	logger alog.Logger
	repo   domain.Repository
	grants domain.GrantRepository
}

type (
	CreateProjectRequest struct {
		UserID      domain.UserID `validate:"required"`
		Label       string        `validate:"required,max=30,projectlabel"`
		Name        string        `validate:"required,max=128"`
		Description string        `validate:"max=1024"`
		URL         string        `validate:"omitempty,url,max=256"`
	}
	CreateProjectResponse struct {
		ProjectID domain.ID
	}
)

// H creates the project and allows its creator to change and delete it.
func (h *createProjectRequestHandler) H(ctx context.Context, req CreateProjectRequest) (CreateProjectResponse, error) {
	exists, err := h.repo.ExistsByLabel(ctx, req.Label)
	if err != nil {
		return CreateProjectResponse{}, fmt.Errorf("could not check label: %w", err)
	}

	if exists {
		return CreateProjectResponse{}, fmt.Errorf("%w: %s", domain.ErrProjectAlreadyExists, req.Label)
	}

	id, err := h.repo.NextID(ctx)
	if err != nil {
		return CreateProjectResponse{}, fmt.Errorf("could not get new id: %w", err)
	}

	now := time.Now().UTC()

	project := domain.Project{
		ID:          id,
		UserID:      req.UserID,
		Label:       req.Label,
		Name:        req.Name,
		Description: req.Description,
		URL:         req.URL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err = h.repo.Save(ctx, project); err != nil {
		return CreateProjectResponse{}, fmt.Errorf("could not save project: %w", err)
	}

	for _, permission := range domain.OwnerPermissions() {
		grantID, err := h.grants.NextID(ctx)
		if err != nil {
			return CreateProjectResponse{}, fmt.Errorf("could not get new grant id: %w", err)
		}

		if err = h.grants.Assign(ctx, domain.NewGrant(grantID, permission, req.UserID, id)); err != nil {
			return CreateProjectResponse{}, fmt.Errorf("could not assign %s: %w", permission, err)
		}
	}

	h.logger.Log(ctx, alog.LevelInfo, "project created",
		slog.String("project_id", string(id)),
		slog.String("label", req.Label),
	)

	return CreateProjectResponse{ProjectID: id}, nil
}
