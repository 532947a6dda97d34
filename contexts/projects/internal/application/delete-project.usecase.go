package application

import (
	"context"
	"fmt"

	"github.com/go-arrower/mirrorhub/app"
	"github.com/go-arrower/mirrorhub/contexts/projects/internal/domain"
)

func NewDeleteProjectCommandHandler(
	repo domain.Repository,
	grants domain.GrantRepository,
) app.Command[DeleteProjectCommand] {
	return app.NewValidatedCommand[DeleteProjectCommand](validate, &deleteProjectCommandHandler{
		repo:   repo,
		grants: grants,
	})
}

type deleteProjectCommandHandler struct {
	repo   domain.Repository
	grants domain.GrantRepository
}

type DeleteProjectCommand struct {
	UserID    domain.UserID `validate:"required"`
	ProjectID domain.ID     `validate:"required"`
}

// H deletes the project together with all permissions on it.
func (h *deleteProjectCommandHandler) H(ctx context.Context, cmd DeleteProjectCommand) error {
	project, err := h.repo.Read(ctx, cmd.ProjectID)
	if err != nil {
		return fmt.Errorf("could not get project: %w", err)
	}

	if err = domain.Authorize(ctx, h.grants, cmd.UserID, domain.DeleteProject, project.ID); err != nil {
		return err //nolint:wrapcheck // wrapped by Authorize
	}

	if err = h.grants.RevokeAll(ctx, domain.ObjectType, string(project.ID)); err != nil {
		return fmt.Errorf("could not revoke permissions: %w", err)
	}

	if err = h.repo.DeleteByID(ctx, project.ID); err != nil {
		return fmt.Errorf("could not delete project: %w", err)
	}

	return nil
}
