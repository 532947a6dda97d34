package application

import (
	"context"
	"fmt"

	"github.com/go-arrower/mirrorhub/app"
	"github.com/go-arrower/mirrorhub/contexts/systems/internal/domain"
)

func NewListSystemsQueryHandler(repo domain.Repository) app.Query[ListSystemsQuery, ListSystemsResponse] {
	return app.QueryFunc[ListSystemsQuery, ListSystemsResponse](
		func(ctx context.Context, _ ListSystemsQuery) (ListSystemsResponse, error) {
			systems, err := repo.All(ctx)
			if err != nil {
				return ListSystemsResponse{}, fmt.Errorf("could not get systems: %w", err)
			}

			return ListSystemsResponse{Systems: systems}, nil
		},
	)
}

type (
	ListSystemsQuery    struct{}
	ListSystemsResponse struct {
		// Systems are ordered by label.
		Systems []domain.System
	}
)
