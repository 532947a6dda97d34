package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-arrower/mirrorhub/app"
	"github.com/go-arrower/mirrorhub/contexts/projects"
	"github.com/go-arrower/mirrorhub/contexts/systems/internal/domain"
)

// NewMirrorListQueryHandler returns the urls of all online mirrors of a project.
func NewMirrorListQueryHandler(
	resources domain.ResourceRepository,
	projectsAPI projects.API,
) app.Query[MirrorListQuery, MirrorListResponse] {
	return app.NewValidatedQuery[MirrorListQuery, MirrorListResponse](nil, &mirrorListQueryHandler{
		resources: resources,
		projects:  projectsAPI,
	})
}

type mirrorListQueryHandler struct {
	resources domain.ResourceRepository
	projects  projects.API
}

type (
	MirrorListQuery struct {
		ProjectLabel string `validate:"required"`
		// Protocol limits the urls to one protocol, all protocols if empty.
		Protocol domain.Protocol `validate:"omitempty,oneof=http https ftp rsync"`
	}
	MirrorListResponse struct {
		Project string
		// URLs are ordered by the label of the system.
		URLs []string
	}
)

func (h *mirrorListQueryHandler) H(ctx context.Context, query MirrorListQuery) (MirrorListResponse, error) {
	project, err := h.projects.ProjectByLabel(ctx, query.ProjectLabel)
	if err != nil {
		if errors.Is(err, projects.ErrNotFound) {
			return MirrorListResponse{}, fmt.Errorf("%w: %s", domain.ErrProjectNotFound, query.ProjectLabel)
		}

		return MirrorListResponse{}, fmt.Errorf("could not get project: %w", err)
	}

	mirrors, err := h.resources.Mirrors(ctx, domain.ProjectID(project.ID))
	if err != nil {
		return MirrorListResponse{}, fmt.Errorf("could not get mirrors: %w", err)
	}

	urls := []string{}
	for _, m := range mirrors {
		urls = append(urls, m.URLs(query.Protocol)...)
	}

	return MirrorListResponse{Project: project.Label, URLs: urls}, nil
}
