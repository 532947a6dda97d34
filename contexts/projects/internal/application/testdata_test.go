package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/go-arrower/mirrorhub/contexts/projects/internal/domain"
	"github.com/go-arrower/mirrorhub/contexts/projects/internal/interfaces/repository"
)

const (
	owner    = domain.UserID("00000000-0000-0000-0000-000000000001")
	stranger = domain.UserID("00000000-0000-0000-0000-000000000002")

	fedoraID = domain.ID("10000000-0000-0000-0000-000000000000")
	debianID = domain.ID("20000000-0000-0000-0000-000000000000")
)

var (
	ctx = context.Background()

	fedora = domain.Project{
		ID:        fedoraID,
		UserID:    owner,
		Label:     "fedora",
		Name:      "Fedora",
		CreatedAt: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	debian = domain.Project{ID: debianID, UserID: stranger, Label: "debian", Name: "Debian"}
)

type fixture struct {
	repo   *repository.ProjectMemoryRepository
	grants *repository.GrantMemoryRepository
}

// newFixture returns repositories with the projects, each owned by its UserID.
func newFixture(t *testing.T, projects ...domain.Project) fixture {
	t.Helper()

	repo, err := repository.NewProjectMemoryRepository()
	require.NoError(t, err)

	grants, err := repository.NewGrantMemoryRepository()
	require.NoError(t, err)

	for _, p := range projects {
		require.NoError(t, repo.Save(ctx, p))

		for _, permission := range domain.OwnerPermissions() {
			id, _ := grants.NextID(ctx)
			require.NoError(t, grants.Assign(ctx, domain.NewGrant(id, permission, p.UserID, p.ID)))
		}
	}

	return fixture{repo: repo, grants: grants}
}
