package application

import (
	"context"
	"fmt"

	"github.com/go-arrower/mirrorhub/app"
	"github.com/go-arrower/mirrorhub/contexts/projects/internal/domain"
)

func NewListProjectsQueryHandler(repo domain.Repository) app.Query[ListProjectsQuery, ListProjectsResponse] {
	return app.NewValidatedQuery[ListProjectsQuery, ListProjectsResponse](validate, &listProjectsQueryHandler{repo: repo})
}

type listProjectsQueryHandler struct {
	repo domain.Repository
}

type (
	ListProjectsQuery    struct{}
	ListProjectsResponse struct {
		Projects []domain.Project
	}
)

func (h *listProjectsQueryHandler) H(ctx context.Context, _ ListProjectsQuery) (ListProjectsResponse, error) {
	all, err := h.repo.All(ctx)
	if err != nil {
		return ListProjectsResponse{}, fmt.Errorf("could not get projects: %w", err)
	}

	return ListProjectsResponse{Projects: all}, nil
}
