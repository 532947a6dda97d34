package domain_test

import (
	"context"

	"github.com/go-arrower/mirrorhub/contexts/projects/internal/domain"
)

var ctx = context.Background()

const (
	owner    domain.UserID = "00000000-0000-0000-0000-000000000010"
	stranger domain.UserID = "00000000-0000-0000-0000-000000000020"
	fedora   domain.ID     = "00000000-0000-0000-0000-000000001000"
)

// grants is a GrantRepository backed by a slice.
type grants struct {
	grants []domain.Grant
	err    error
}

func (g *grants) NextID(context.Context) (domain.GrantID, error) { return "", nil }

func (g *grants) Assign(_ context.Context, grant domain.Grant) error {
	g.grants = append(g.grants, grant)

	return nil
}

func (g *grants) Has(
	_ context.Context,
	userID domain.UserID,
	permission domain.Permission,
	objectType string,
	objectID string,
) (bool, error) {
	if g.err != nil {
		return false, g.err
	}

	for _, grant := range g.grants {
		if grant.UserID == userID && grant.Permission == permission &&
			grant.ObjectType == objectType && grant.ObjectID == objectID {
			return true, nil
		}
	}

	return false, nil
}

func (g *grants) RevokeAll(context.Context, string, string) error { return nil }

func (g *grants) FindByObject(context.Context, string, string) ([]domain.Grant, error) {
	return g.grants, nil
}
