package application

import (
	"context"
	"fmt"

	"github.com/go-arrower/mirrorhub/app"
	"github.com/go-arrower/mirrorhub/contexts/systems/internal/domain"
)

func NewShowSystemQueryHandler(
	repo domain.Repository,
	resources domain.ResourceRepository,
) app.Query[ShowSystemQuery, ShowSystemResponse] {
	return app.NewValidatedQuery[ShowSystemQuery, ShowSystemResponse](nil, &showSystemQueryHandler{
		repo:      repo,
		resources: resources,
	})
}

type showSystemQueryHandler struct {
	repo      domain.Repository
	resources domain.ResourceRepository
}

type (
	ShowSystemQuery struct {
		SystemID domain.ID `validate:"required"`
	}
	ShowSystemResponse struct {
		System      domain.System
		DisplayName string
		Resources   []domain.SystemResource
	}
)

func (h *showSystemQueryHandler) H(ctx context.Context, query ShowSystemQuery) (ShowSystemResponse, error) {
	system, err := h.repo.Read(ctx, query.SystemID)
	if err != nil {
		return ShowSystemResponse{}, fmt.Errorf("could not get system: %w", err)
	}

	resources, err := h.resources.FindBySystem(ctx, system.ID)
	if err != nil {
		return ShowSystemResponse{}, fmt.Errorf("could not get resources: %w", err)
	}

	return ShowSystemResponse{
		System:      system,
		DisplayName: system.DisplayName(),
		Resources:   resources,
	}, nil
}
