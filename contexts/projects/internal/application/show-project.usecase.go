package application

import (
	"context"
	"fmt"

	"github.com/go-arrower/mirrorhub/app"
	"github.com/go-arrower/mirrorhub/contexts/projects/internal/domain"
)

func NewShowProjectQueryHandler(repo domain.Repository) app.Query[ShowProjectQuery, ShowProjectResponse] {
	return app.NewValidatedQuery[ShowProjectQuery, ShowProjectResponse](validate, &showProjectQueryHandler{repo: repo})
}

type showProjectQueryHandler struct {
	repo domain.Repository
}

type (
	// ShowProjectQuery finds a project by its ID or, if empty, by its Label.
	ShowProjectQuery struct {
		ProjectID domain.ID `validate:"required_without=Label"`
		Label     string    `validate:"required_without=ProjectID"`
	}
	ShowProjectResponse struct {
		Project domain.Project
	}
)

func (h *showProjectQueryHandler) H(ctx context.Context, query ShowProjectQuery) (ShowProjectResponse, error) {
	var (
		project domain.Project
		err     error
	)

	if query.ProjectID != "" {
		project, err = h.repo.Read(ctx, query.ProjectID)
	} else {
		project, err = h.repo.FindByLabel(ctx, query.Label)
	}

	if err != nil {
		return ShowProjectResponse{}, fmt.Errorf("could not get project: %w", err)
	}

	return ShowProjectResponse{Project: project}, nil
}
