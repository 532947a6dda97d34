// Package application contains the use cases of the systems Context.
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/go-arrower/mirrorhub/app"
	"github.com/go-arrower/mirrorhub/contexts/systems/internal/domain"
)

type SystemsApplication struct {
	CreateSystem    app.Request[CreateSystemRequest, CreateSystemResponse]
	UpdateSystem    app.Command[UpdateSystemCommand]
	DeleteSystem    app.Command[DeleteSystemCommand]
	ShowSystem      app.Query[ShowSystemQuery, ShowSystemResponse]
	ListSystems     app.Query[ListSystemsQuery, ListSystemsResponse]
	PreviewLocation app.Query[PreviewLocationQuery, PreviewLocationResponse]

	AddResource    app.Request[AddResourceRequest, AddResourceResponse]
	RemoveResource app.Command[RemoveResourceCommand]
	MirrorList     app.Query[MirrorListQuery, MirrorListResponse]
}

// NewLocationResolver bounds every resolution of resolver by timeout. Zero means no timeout.
func NewLocationResolver(resolver *domain.Resolver, timeout time.Duration) *LocationResolver {
	return &LocationResolver{resolver: resolver, timeout: timeout}
}

type LocationResolver struct {
	resolver *domain.Resolver
	timeout  time.Duration
}

func (r *LocationResolver) Resolve(ctx context.Context, label string, strategy domain.Strategy) (domain.Location, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	loc, err := r.resolver.Resolve(ctx, label, strategy)
	if err != nil {
		return domain.Location{}, fmt.Errorf("could not resolve location of %s: %w", label, err)
	}

	return loc, nil
}

// location holds the editable location hints of a system.
type location struct {
	Country string
	Region  string
	City    string
}

func (l location) strategy() domain.Strategy { //nolint:ireturn // tagged union
	return domain.StrategyFor(l.Country, l.Region, l.City)
}
