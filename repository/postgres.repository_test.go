//go:build integration

package repository_test

import (
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arrower/mirrorhub/postgres"
	"github.com/go-arrower/mirrorhub/repository"
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

func TestPostgresRepository(t *testing.T) {
	t.Parallel()

	repository.TestSuite(t, func(t *testing.T) repository.Repository[repository.TestEntity, repository.TestEntityID] {
		t.Helper()

		pg := pgHandler.NewTestDatabase()
		initTestSchema(t, pg)

		repo, err := repository.NewPostgresRepository[repository.TestEntity, repository.TestEntityID](pg)
		require.NoError(t, err)

		return repo
	})
}

func TestPostgresRepository_Tx(t *testing.T) {
	t.Parallel()

	pg := pgHandler.NewTestDatabase()
	initTestSchema(t, pg)

	repo, err := repository.NewPostgresRepository[repository.TestEntity, repository.TestEntityID](pg)
	require.NoError(t, err)

	tx, err := pg.Begin(ctx)
	require.NoError(t, err)

	entity := repository.NewTestEntity()
	err = repo.Create(postgres.WithTx(ctx, tx), entity)
	assert.NoError(t, err)

	exists, _ := repo.Exists(postgres.WithTx(ctx, tx), entity.ID)
	assert.True(t, exists, "visible inside the transaction")
	exists, _ = repo.Exists(ctx, entity.ID)
	assert.False(t, exists, "not visible outside the transaction")

	require.NoError(t, tx.Rollback(ctx))

	count, err := repo.Count(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestPostgresRepository_MissingTable(t *testing.T) {
	t.Parallel()

	pg := pgHandler.NewTestDatabase()

	repo, err := repository.NewPostgresRepository[repository.TestEntity, repository.TestEntityID](pg)
	require.NoError(t, err)

	_, err = repo.All(ctx)
	assert.ErrorIs(t, err, repository.ErrStorage)
}

func initTestSchema(t *testing.T, pg *pgxpool.Pool) {
	t.Helper()

	_, err := pg.Exec(ctx, `CREATE TABLE IF NOT EXISTS test_entities(id TEXT PRIMARY KEY, name TEXT, score DOUBLE PRECISION, city TEXT);`)
	require.NoError(t, err)
}
