package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arrower/mirrorhub/contexts/systems/internal/domain"
)

var ctx = context.Background()

const (
	owner  domain.UserID    = "00000000-0000-0000-0000-000000000010"
	fedora domain.ProjectID = "00000000-0000-0000-0000-000000001000"
	debian domain.ProjectID = "00000000-0000-0000-0000-000000002000"
)

func newSystem(label string, online bool) domain.System {
	return domain.System{
		ID:       domain.ID(uuid.New().String()),
		UserID:   owner,
		Label:    label,
		Online:   online,
		Location: domain.Location{IP: "192.0.2.10", Country: "Canada", CountryCode: "CA"},
	}
}

func newResource(system domain.System, project domain.ProjectID, include bool) domain.SystemResource {
	return domain.SystemResource{
		ID:                  domain.ResourceID(uuid.New().String()),
		UserID:              owner,
		SystemID:            system.ID,
		ProjectID:           project,
		Protocols:           []string{"https", "rsync"},
		Path:                "/pub/" + string(project),
		IncludeInMirrorlist: include,
	}
}

// testRepositories verifies both implementations of the systems repositories behave the same.
// newRepos has to return new and empty repositories on each call.
func testRepositories(
	t *testing.T,
	newRepos func(t *testing.T) (domain.Repository, domain.ResourceRepository),
) { //nolint:tparallel // the caller decides
	t.Helper()

	t.Run("save and read", func(t *testing.T) {
		t.Parallel()

		systems, _ := newRepos(t)
		system := newSystem("mirror.example.org", true)

		require.NoError(t, systems.Save(ctx, system))

		got, err := systems.Read(ctx, system.ID)
		assert.NoError(t, err)
		assert.Equal(t, system.Label, got.Label)
		assert.Equal(t, system.Location.IP, got.Location.IP)
		assert.Equal(t, system.Location.CountryCode, got.Location.CountryCode)
		assert.True(t, got.Online)

		_, err = systems.Read(ctx, "unknown")
		assert.ErrorIs(t, err, domain.ErrSystemNotFound)
	})

	t.Run("unique label", func(t *testing.T) {
		t.Parallel()

		systems, _ := newRepos(t)
		system := newSystem("mirror.example.org", true)
		require.NoError(t, systems.Save(ctx, system))

		err := systems.Save(ctx, newSystem("mirror.example.org", true))
		assert.ErrorIs(t, err, domain.ErrSystemAlreadyExists)

		system.ContactName = "Jane"
		assert.NoError(t, systems.Save(ctx, system), "same system keeps its label")
	})

	t.Run("find by label", func(t *testing.T) {
		t.Parallel()

		systems, _ := newRepos(t)
		system := newSystem("mirror.example.org", true)
		require.NoError(t, systems.Save(ctx, system))

		got, err := systems.FindByLabel(ctx, "mirror.example.org")
		assert.NoError(t, err)
		assert.Equal(t, system.ID, got.ID)

		_, err = systems.FindByLabel(ctx, "other.example.org")
		assert.ErrorIs(t, err, domain.ErrSystemNotFound)

		exists, err := systems.ExistsByLabel(ctx, "mirror.example.org")
		assert.NoError(t, err)
		assert.True(t, exists)

		exists, err = systems.ExistsByLabel(ctx, "other.example.org")
		assert.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("all ordered by label", func(t *testing.T) {
		t.Parallel()

		systems, _ := newRepos(t)
		require.NoError(t, systems.Save(ctx, newSystem("c.example.org", true)))
		require.NoError(t, systems.Save(ctx, newSystem("a.example.org", true)))
		require.NoError(t, systems.Save(ctx, newSystem("b.example.org", false)))

		all, err := systems.All(ctx)
		assert.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "a.example.org", all[0].Label)
		assert.Equal(t, "b.example.org", all[1].Label)
		assert.Equal(t, "c.example.org", all[2].Label)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		systems, _ := newRepos(t)
		system := newSystem("mirror.example.org", true)
		require.NoError(t, systems.Save(ctx, system))

		assert.NoError(t, systems.DeleteByID(ctx, system.ID))

		_, err := systems.Read(ctx, system.ID)
		assert.ErrorIs(t, err, domain.ErrSystemNotFound)
	})

	t.Run("resources", func(t *testing.T) {
		t.Parallel()

		systems, resources := newRepos(t)
		system := newSystem("mirror.example.org", true)
		require.NoError(t, systems.Save(ctx, system))

		resource := newResource(system, fedora, true)
		require.NoError(t, resources.Create(ctx, resource))

		err := resources.Create(ctx, newResource(system, fedora, true))
		assert.ErrorIs(t, err, domain.ErrResourceExists)

		got, err := resources.Read(ctx, resource.ID)
		assert.NoError(t, err)
		assert.Equal(t, resource, got)

		require.NoError(t, resources.Create(ctx, newResource(system, debian, true)))
		found, err := resources.FindBySystem(ctx, system.ID)
		assert.NoError(t, err)
		assert.Len(t, found, 2)

		assert.NoError(t, resources.DeleteByID(ctx, resource.ID))
		_, err = resources.Read(ctx, resource.ID)
		assert.ErrorIs(t, err, domain.ErrResourceNotFound)
		assert.ErrorIs(t, resources.DeleteByID(ctx, resource.ID), domain.ErrResourceNotFound)

		assert.NoError(t, resources.DeleteBySystem(ctx, system.ID))
		found, err = resources.FindBySystem(ctx, system.ID)
		assert.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("mirrors", func(t *testing.T) {
		t.Parallel()

		systems, resources := newRepos(t)

		b := newSystem("b.example.org", true)
		a := newSystem("a.example.org", true)
		offline := newSystem("offline.example.org", false)
		hidden := newSystem("hidden.example.org", true)

		for _, s := range []domain.System{b, a, offline, hidden} {
			require.NoError(t, systems.Save(ctx, s))
		}

		require.NoError(t, resources.Create(ctx, newResource(b, fedora, true)))
		require.NoError(t, resources.Create(ctx, newResource(a, fedora, true)))
		require.NoError(t, resources.Create(ctx, newResource(a, debian, true)))
		require.NoError(t, resources.Create(ctx, newResource(offline, fedora, true)))
		require.NoError(t, resources.Create(ctx, newResource(hidden, fedora, false)))

		mirrors, err := resources.Mirrors(ctx, fedora)
		assert.NoError(t, err)
		require.Len(t, mirrors, 2)
		assert.Equal(t, "a.example.org", mirrors[0].System.Label)
		assert.Equal(t, fedora, mirrors[0].Resource.ProjectID)
		assert.Equal(t, "b.example.org", mirrors[1].System.Label)
		assert.Equal(t, []string{"https://a.example.org/pub/" + string(fedora)}, mirrors[0].URLs(domain.HTTPS))

		mirrors, err = resources.Mirrors(ctx, "unknown")
		assert.NoError(t, err)
		assert.Empty(t, mirrors)
	})
}
