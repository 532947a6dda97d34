package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arrower/mirrorhub/contexts/projects/internal/domain"
)

var ctx = context.Background()

const (
	owner    domain.UserID = "00000000-0000-0000-0000-000000000010"
	stranger domain.UserID = "00000000-0000-0000-0000-000000000020"
)

func newProject(label string) domain.Project {
	now := time.Now().UTC().Truncate(time.Second)

	return domain.Project{
		ID:          domain.ID(uuid.New().String()),
		UserID:      owner,
		Label:       label,
		Name:        gofakeit.AppName(),
		Description: gofakeit.Sentence(8),
		URL:         gofakeit.URL(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func newGrant(permission domain.Permission, userID domain.UserID, project domain.ID) domain.Grant {
	return domain.NewGrant(domain.GrantID(uuid.New().String()), permission, userID, project)
}

// testRepositories verifies both implementations of the projects repositories behave the same.
// newRepos has to return new and empty repositories on each call.
func testRepositories(
	t *testing.T,
	newRepos func(t *testing.T) (domain.Repository, domain.GrantRepository),
) { //nolint:tparallel // the caller decides
	t.Helper()

	t.Run("save and read", func(t *testing.T) {
		t.Parallel()

		projects, _ := newRepos(t)
		project := newProject("fedora")

		require.NoError(t, projects.Save(ctx, project))

		got, err := projects.Read(ctx, project.ID)
		assert.NoError(t, err)
		assert.Equal(t, project.Label, got.Label)
		assert.Equal(t, project.Name, got.Name)
		assert.Equal(t, project.URL, got.URL)
		assert.True(t, project.CreatedAt.Equal(got.CreatedAt))

		_, err = projects.Read(ctx, "unknown")
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	})

	t.Run("update", func(t *testing.T) {
		t.Parallel()

		projects, _ := newRepos(t)
		project := newProject("fedora")
		require.NoError(t, projects.Save(ctx, project))

		project.Name = "Fedora Linux"
		require.NoError(t, projects.Save(ctx, project))

		got, err := projects.Read(ctx, project.ID)
		assert.NoError(t, err)
		assert.Equal(t, "Fedora Linux", got.Name)
	})

	t.Run("unique label", func(t *testing.T) {
		t.Parallel()

		projects, _ := newRepos(t)
		require.NoError(t, projects.Save(ctx, newProject("fedora")))

		err := projects.Save(ctx, newProject("fedora"))
		assert.ErrorIs(t, err, domain.ErrProjectAlreadyExists)
	})

	t.Run("find by label", func(t *testing.T) {
		t.Parallel()

		projects, _ := newRepos(t)
		project := newProject("fedora")
		require.NoError(t, projects.Save(ctx, project))

		got, err := projects.FindByLabel(ctx, "fedora")
		assert.NoError(t, err)
		assert.Equal(t, project.ID, got.ID)

		_, err = projects.FindByLabel(ctx, "debian")
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)

		ok, err := projects.ExistsByLabel(ctx, "fedora")
		assert.NoError(t, err)
		assert.True(t, ok)

		ok, err = projects.ExistsByLabel(ctx, "debian")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("all ordered by label", func(t *testing.T) {
		t.Parallel()

		projects, _ := newRepos(t)
		require.NoError(t, projects.Save(ctx, newProject("ubuntu")))
		require.NoError(t, projects.Save(ctx, newProject("debian")))
		require.NoError(t, projects.Save(ctx, newProject("fedora")))

		all, err := projects.All(ctx)
		assert.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "debian", all[0].Label)
		assert.Equal(t, "fedora", all[1].Label)
		assert.Equal(t, "ubuntu", all[2].Label)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		projects, _ := newRepos(t)
		project := newProject("fedora")
		require.NoError(t, projects.Save(ctx, project))

		assert.NoError(t, projects.DeleteByID(ctx, project.ID))

		_, err := projects.Read(ctx, project.ID)
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	})

	t.Run("assign grants", func(t *testing.T) {
		t.Parallel()

		_, grants := newRepos(t)
		project := newProject("fedora")

		require.NoError(t, grants.Assign(ctx, newGrant(domain.ChangeProject, owner, project.ID)))
		require.NoError(t, grants.Assign(ctx, newGrant(domain.DeleteProject, owner, project.ID)))

		ok, err := grants.Has(ctx, owner, domain.ChangeProject, domain.ObjectType, string(project.ID))
		assert.NoError(t, err)
		assert.True(t, ok)

		ok, err = grants.Has(ctx, stranger, domain.ChangeProject, domain.ObjectType, string(project.ID))
		assert.NoError(t, err)
		assert.False(t, ok)

		found, err := grants.FindByObject(ctx, domain.ObjectType, string(project.ID))
		assert.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, domain.ChangeProject, found[0].Permission)
		assert.Equal(t, domain.DeleteProject, found[1].Permission)
	})

	t.Run("assign grant twice", func(t *testing.T) {
		t.Parallel()

		_, grants := newRepos(t)
		project := newProject("fedora")

		require.NoError(t, grants.Assign(ctx, newGrant(domain.ChangeProject, owner, project.ID)))
		assert.NoError(t, grants.Assign(ctx, newGrant(domain.ChangeProject, owner, project.ID)))

		found, err := grants.FindByObject(ctx, domain.ObjectType, string(project.ID))
		assert.NoError(t, err)
		assert.Len(t, found, 1)
	})

	t.Run("revoke all", func(t *testing.T) {
		t.Parallel()

		_, grants := newRepos(t)
		fedora := newProject("fedora")
		debian := newProject("debian")

		require.NoError(t, grants.Assign(ctx, newGrant(domain.ChangeProject, owner, fedora.ID)))
		require.NoError(t, grants.Assign(ctx, newGrant(domain.DeleteProject, stranger, fedora.ID)))
		require.NoError(t, grants.Assign(ctx, newGrant(domain.ChangeProject, owner, debian.ID)))

		assert.NoError(t, grants.RevokeAll(ctx, domain.ObjectType, string(fedora.ID)))

		found, err := grants.FindByObject(ctx, domain.ObjectType, string(fedora.ID))
		assert.NoError(t, err)
		assert.Empty(t, found)

		ok, err := grants.Has(ctx, owner, domain.ChangeProject, domain.ObjectType, string(debian.ID))
		assert.NoError(t, err)
		assert.True(t, ok, "other projects keep their grants")
	})
}
