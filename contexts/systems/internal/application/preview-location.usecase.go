package application

import (
	"context"

	"github.com/go-arrower/mirrorhub/app"
	"github.com/go-arrower/mirrorhub/contexts/systems/internal/domain"
)

// NewPreviewLocationQueryHandler resolves the location of a host, without saving anything.
func NewPreviewLocationQueryHandler(resolver *LocationResolver) app.Query[PreviewLocationQuery, PreviewLocationResponse] {
	return app.NewValidatedQuery[PreviewLocationQuery, PreviewLocationResponse](nil,
		app.QueryFunc[PreviewLocationQuery, PreviewLocationResponse](
			func(ctx context.Context, query PreviewLocationQuery) (PreviewLocationResponse, error) {
				loc, err := resolver.Resolve(ctx, query.Label,
					location{Country: query.Country, Region: query.Region, City: query.City}.strategy(),
				)
				if err != nil {
					return PreviewLocationResponse{}, err
				}

				return PreviewLocationResponse{
					Location:    loc,
					DisplayName: domain.System{Label: query.Label, Location: loc}.DisplayName(),
				}, nil
			},
		),
	)
}

type (
	PreviewLocationQuery struct {
		Label   string `validate:"required,max=128"`
		Country string `validate:"max=50"`
		Region  string `validate:"max=50"`
		City    string `validate:"max=50"`
	}
	PreviewLocationResponse struct {
		Location    domain.Location
		DisplayName string
	}
)
