package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-arrower/mirrorhub/alog"
	"github.com/go-arrower/mirrorhub/app"
	"github.com/go-arrower/mirrorhub/contexts/systems/internal/domain"
)

func NewCreateSystemRequestHandler(
	logger alog.Logger,
	repo domain.Repository,
	resolver *LocationResolver,
) app.Request[CreateSystemRequest, CreateSystemResponse] {
	return app.NewValidatedRequest[CreateSystemRequest, CreateSystemResponse](nil, &createSystemRequestHandler{
		logger:   logger,
		repo:     repo,
		resolver: resolver,
	})
}

type createSystemRequestHandler struct {
	logger   alog.Logger
	repo     domain.Repository
	resolver *LocationResolver
}

type (
	CreateSystemRequest struct {
		UserID       domain.UserID `validate:"required"`
		Label        string        `validate:"required,max=128"`
		AdminGroup   string        `validate:"max=128"`
		ContactName  string        `validate:"max=128"`
		ContactEmail string        `validate:"omitempty,email,max=128"`
		// Offline systems are not part of any mirror list.
		Offline bool

		// Country, Region, and City are optional location hints.
		// If Country is empty, the location is looked up by the ip address.
		Country string `validate:"max=50"`
		Region  string `validate:"max=50"`
		City    string `validate:"max=50"`
	}
	CreateSystemResponse struct {
		SystemID domain.ID
	}
)

func (h *createSystemRequestHandler) H(ctx context.Context, req CreateSystemRequest) (CreateSystemResponse, error) {
	exists, err := h.repo.ExistsByLabel(ctx, req.Label)
	if err != nil {
		return CreateSystemResponse{}, fmt.Errorf("could not check label: %w", err)
	}

	if exists {
		return CreateSystemResponse{}, fmt.Errorf("%w: %s", domain.ErrSystemAlreadyExists, req.Label)
	}

	strategy := location{Country: req.Country, Region: req.Region, City: req.City}.strategy()

	loc, err := h.resolver.Resolve(ctx, req.Label, strategy)
	if err != nil {
		return CreateSystemResponse{}, err
	}

	id, err := h.repo.NextID(ctx)
	if err != nil {
		return CreateSystemResponse{}, fmt.Errorf("could not get new id: %w", err)
	}

	now := time.Now().UTC()

	system := domain.System{
		ID:           id,
		UserID:       req.UserID,
		Label:        req.Label,
		AdminGroup:   req.AdminGroup,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		Online:       !req.Offline,
		Location:     loc,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err = h.repo.Save(ctx, system); err != nil {
		return CreateSystemResponse{}, fmt.Errorf("could not save system: %w", err)
	}

	h.logger.Log(ctx, alog.LevelInfo, "system located",
		slog.String("system_id", string(id)),
		slog.String("ip", loc.IP),
		slog.String("strategy", fmt.Sprintf("%T", strategy)),
	)

	return CreateSystemResponse{SystemID: id}, nil
}
