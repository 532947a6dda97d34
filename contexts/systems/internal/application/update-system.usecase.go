package application

import (
	"context"
	"fmt"
	"time"

	"github.com/go-arrower/mirrorhub/app"
	"github.com/go-arrower/mirrorhub/contexts/systems/internal/domain"
)

func NewUpdateSystemCommandHandler(repo domain.Repository, resolver *LocationResolver) app.Command[UpdateSystemCommand] {
	return app.NewValidatedCommand[UpdateSystemCommand](nil, &updateSystemCommandHandler{repo: repo, resolver: resolver})
}

type updateSystemCommandHandler struct {
	repo     domain.Repository
	resolver *LocationResolver
}

// UpdateSystemCommand replaces all editable fields of a System.
type UpdateSystemCommand struct {
	UserID       domain.UserID `validate:"required"`
	SystemID     domain.ID     `validate:"required"`
	Label        string        `validate:"required,max=128"`
	AdminGroup   string        `validate:"max=128"`
	ContactName  string        `validate:"max=128"`
	ContactEmail string        `validate:"omitempty,email,max=128"`
	Online       bool

	Country string `validate:"max=50"`
	Region  string `validate:"max=50"`
	City    string `validate:"max=50"`
}

// H resolves the location again, even if the label did not change.
func (h *updateSystemCommandHandler) H(ctx context.Context, cmd UpdateSystemCommand) error {
	system, err := h.repo.Read(ctx, cmd.SystemID)
	if err != nil {
		return fmt.Errorf("could not get system: %w", err)
	}

	if !system.IsOwnedBy(cmd.UserID) {
		return fmt.Errorf("%w: user %s may not change system %s", domain.ErrForbidden, cmd.UserID, system.ID)
	}

	if cmd.Label != system.Label {
		exists, err := h.repo.ExistsByLabel(ctx, cmd.Label)
		if err != nil {
			return fmt.Errorf("could not check label: %w", err)
		}

		if exists {
			return fmt.Errorf("%w: %s", domain.ErrSystemAlreadyExists, cmd.Label)
		}
	}

	loc, err := h.resolver.Resolve(ctx, cmd.Label,
		location{Country: cmd.Country, Region: cmd.Region, City: cmd.City}.strategy(),
	)
	if err != nil {
		return err
	}

	system.Label = cmd.Label
	system.AdminGroup = cmd.AdminGroup
	system.ContactName = cmd.ContactName
	system.ContactEmail = cmd.ContactEmail
	system.Online = cmd.Online
	system.Location = loc
	system.UpdatedAt = time.Now().UTC()

	if err = h.repo.Save(ctx, system); err != nil {
		return fmt.Errorf("could not save system: %w", err)
	}

	return nil
}
