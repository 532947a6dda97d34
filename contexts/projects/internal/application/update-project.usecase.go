package application

import (
	"context"
	"fmt"
	"time"

	"github.com/go-arrower/mirrorhub/app"
	"github.com/go-arrower/mirrorhub/contexts/projects/internal/domain"
)

func NewUpdateProjectCommandHandler(
	repo domain.Repository,
	grants domain.GrantRepository,
) app.Command[UpdateProjectCommand] {
	return app.NewValidatedCommand[UpdateProjectCommand](validate, &updateProjectCommandHandler{
		repo:   repo,
		grants: grants,
	})
}

type updateProjectCommandHandler struct {
	repo   domain.Repository
	grants domain.GrantRepository
}

type UpdateProjectCommand struct {
	UserID      domain.UserID `validate:"required"`
	ProjectID   domain.ID     `validate:"required"`
	Label       string        `validate:"required,max=30,projectlabel"`
	Name        string        `validate:"required,max=128"`
	Description string        `validate:"max=1024"`
	URL         string        `validate:"omitempty,url,max=256"`
}

func (h *updateProjectCommandHandler) H(ctx context.Context, cmd UpdateProjectCommand) error {
	project, err := h.repo.Read(ctx, cmd.ProjectID)
	if err != nil {
		return fmt.Errorf("could not get project: %w", err)
	}

	if err = domain.Authorize(ctx, h.grants, cmd.UserID, domain.ChangeProject, project.ID); err != nil {
		return err //nolint:wrapcheck // wrapped by Authorize
	}

	if cmd.Label != project.Label {
		exists, err := h.repo.ExistsByLabel(ctx, cmd.Label)
		if err != nil {
			return fmt.Errorf("could not check label: %w", err)
		}

		if exists {
			return fmt.Errorf("%w: %s", domain.ErrProjectAlreadyExists, cmd.Label)
		}
	}

	project.Label = cmd.Label
	project.Name = cmd.Name
	project.Description = cmd.Description
	project.URL = cmd.URL
	project.UpdatedAt = time.Now().UTC()

	if err = h.repo.Save(ctx, project); err != nil {
		return fmt.Errorf("could not save project: %w", err)
	}

	return nil
}
