package application

import (
	"context"
	"fmt"

	"github.com/go-arrower/mirrorhub/app"
	"github.com/go-arrower/mirrorhub/contexts/systems/internal/domain"
)

func NewRemoveResourceCommandHandler(
	repo domain.Repository,
	resources domain.ResourceRepository,
) app.Command[RemoveResourceCommand] {
	return app.NewValidatedCommand[RemoveResourceCommand](nil,
		app.CommandFunc[RemoveResourceCommand](func(ctx context.Context, cmd RemoveResourceCommand) error {
			resource, err := resources.Read(ctx, cmd.ResourceID)
			if err != nil {
				return fmt.Errorf("could not get resource: %w", err)
			}

			if resource.SystemID != cmd.SystemID {
				return fmt.Errorf("%w: %s on system %s", domain.ErrResourceNotFound, cmd.ResourceID, cmd.SystemID)
			}

			system, err := repo.Read(ctx, cmd.SystemID)
			if err != nil {
				return fmt.Errorf("could not get system: %w", err)
			}

			if !system.IsOwnedBy(cmd.UserID) {
				return fmt.Errorf("%w: user %s may not change system %s", domain.ErrForbidden, cmd.UserID, system.ID)
			}

			if err = resources.DeleteByID(ctx, resource.ID); err != nil {
				return fmt.Errorf("could not delete resource: %w", err)
			}

			return nil
		}),
	)
}

type RemoveResourceCommand struct {
	UserID     domain.UserID     `validate:"required"`
	SystemID   domain.ID         `validate:"required"`
	ResourceID domain.ResourceID `validate:"required"`
}
