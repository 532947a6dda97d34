package application

import (
	"context"
	"fmt"

	"github.com/go-arrower/mirrorhub/app"
	"github.com/go-arrower/mirrorhub/contexts/systems/internal/domain"
)

func NewDeleteSystemCommandHandler(
	repo domain.Repository,
	resources domain.ResourceRepository,
) app.Command[DeleteSystemCommand] {
	return app.NewValidatedCommand[DeleteSystemCommand](nil, &deleteSystemCommandHandler{
		repo:      repo,
		resources: resources,
	})
}

type deleteSystemCommandHandler struct {
	repo      domain.Repository
	resources domain.ResourceRepository
}

type DeleteSystemCommand struct {
	UserID   domain.UserID `validate:"required"`
	SystemID domain.ID     `validate:"required"`
}

func (h *deleteSystemCommandHandler) H(ctx context.Context, cmd DeleteSystemCommand) error {
	system, err := h.repo.Read(ctx, cmd.SystemID)
	if err != nil {
		return fmt.Errorf("could not get system: %w", err)
	}

	if !system.IsOwnedBy(cmd.UserID) {
		return fmt.Errorf("%w: user %s may not delete system %s", domain.ErrForbidden, cmd.UserID, system.ID)
	}

	if err = h.resources.DeleteBySystem(ctx, system.ID); err != nil {
		return fmt.Errorf("could not delete resources: %w", err)
	}

	if err = h.repo.DeleteByID(ctx, system.ID); err != nil {
		return fmt.Errorf("could not delete system: %w", err)
	}

	return nil
}
