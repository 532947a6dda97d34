//go:build integration

package repository_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arrower/mirrorhub/contexts/projects/internal/domain"
	"github.com/go-arrower/mirrorhub/contexts/projects/internal/interfaces/repository"
	"github.com/go-arrower/mirrorhub/tests"
)

var pgHandler *tests.PostgresDocker

func TestMain(m *testing.M) {
	pgHandler = tests.GetPostgresDockerForIntegrationTestingInstance()

	//
	// Run tests
	code := m.Run()

	pgHandler.Cleanup()
	os.Exit(code)
}

func TestPostgresRepositories(t *testing.T) {
	t.Parallel()

	testRepositories(t, func(t *testing.T) (domain.Repository, domain.GrantRepository) {
		t.Helper()

		pg := pgHandler.NewTestDatabase()

		projects, err := repository.NewProjectPostgresRepository(pg)
		require.NoError(t, err)

		grants, err := repository.NewGrantPostgresRepository(pg)
		require.NoError(t, err)

		return projects, grants
	})
}

func TestNewPostgresRepositories(t *testing.T) {
	t.Parallel()

	_, err := repository.NewProjectPostgresRepository(nil)
	assert.ErrorIs(t, err, repository.ErrMissingConnection)

	_, err = repository.NewGrantPostgresRepository(nil)
	assert.ErrorIs(t, err, repository.ErrMissingConnection)
}

func TestProjectPostgresRepository_Fixtures(t *testing.T) {
	t.Parallel()

	pg := pgHandler.NewTestDatabase("testdata/fixtures/projects.yaml")

	projects, err := repository.NewProjectPostgresRepository(pg)
	require.NoError(t, err)

	grants, err := repository.NewGrantPostgresRepository(pg)
	require.NoError(t, err)

	all, err := projects.All(ctx)
	assert.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "debian", all[0].Label)
	assert.Equal(t, "fedora", all[1].Label)

	ok, err := grants.Has(ctx, owner, domain.DeleteProject, domain.ObjectType, string(all[1].ID))
	assert.NoError(t, err)
	assert.True(t, ok)
}
