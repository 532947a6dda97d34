package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arrower/mirrorhub/repository"
)

var (
	ctx            = context.Background()
	errStoreFailed = errors.New("store failed")
)

func TestMemoryRepository(t *testing.T) {
	t.Parallel()

	repository.TestSuite(t, func(t *testing.T) repository.Repository[repository.TestEntity, repository.TestEntityID] {
		t.Helper()

		repo, err := repository.NewMemoryRepository[repository.TestEntity, repository.TestEntityID]()
		require.NoError(t, err)

		return repo
	})
}

func TestNewMemoryRepository(t *testing.T) {
	t.Parallel()

	t.Run("missing id field", func(t *testing.T) {
		t.Parallel()

		type entityWithoutID struct{ Name string }

		_, err := repository.NewMemoryRepository[entityWithoutID, string]()
		assert.ErrorIs(t, err, repository.ErrStorage)

		repo, err := repository.NewMemoryRepository[entityWithoutID, string](repository.WithIDField("Name"))
		assert.NoError(t, err)
		assert.NoError(t, repo.Save(ctx, entityWithoutID{Name: "mirror"}))
	})

	t.Run("load from store", func(t *testing.T) {
		t.Parallel()

		store, err := repository.NewJSONStore(t.TempDir())
		require.NoError(t, err)

		repo, _ := repository.NewMemoryRepository[repository.TestEntity, repository.TestEntityID](repository.WithStore(store))
		entity := repository.NewTestEntity()
		require.NoError(t, repo.Create(ctx, entity))

		reloaded, err := repository.NewMemoryRepository[repository.TestEntity, repository.TestEntityID](
			repository.WithStore(store),
		)
		assert.NoError(t, err)

		got, err := reloaded.Read(ctx, entity.ID)
		assert.NoError(t, err)
		assert.Equal(t, entity, got)
	})

	t.Run("load from store fails", func(t *testing.T) {
		t.Parallel()

		_, err := repository.NewMemoryRepository[repository.TestEntity, repository.TestEntityID](
			repository.WithStore(&failingStore{}),
		)
		assert.ErrorIs(t, err, errStoreFailed)
	})
}

func TestMemoryRepository_storeFails(t *testing.T) {
	t.Parallel()

	store := &failingStore{loadOK: true}
	repo, err := repository.NewMemoryRepository[repository.TestEntity, repository.TestEntityID](repository.WithStore(store))
	require.NoError(t, err)

	entity := repository.NewTestEntity()

	err = repo.Create(ctx, entity)
	assert.ErrorIs(t, err, repository.ErrSaveFailed)

	ok, _ := repo.Exists(ctx, entity.ID)
	assert.False(t, ok, "change is reverted")

	err = repo.Save(ctx, entity)
	assert.ErrorIs(t, err, errStoreFailed)

	c, _ := repo.Count(ctx)
	assert.Equal(t, 0, c)
}

type failingStore struct {
	loadOK bool
}

func (s *failingStore) Store(string, any) error {
	return errStoreFailed
}

func (s *failingStore) Load(string, any) error {
	if s.loadOK {
		return nil
	}

	return errStoreFailed
}

func TestMemoryRepository_Locked(t *testing.T) {
	t.Parallel()

	repo, err := repository.NewMemoryRepository[repository.TestEntity, repository.TestEntityID]()
	require.NoError(t, err)

	entity := repository.NewTestEntity()

	repo.Lock()
	assert.NoError(t, repo.CreateLocked(entity))
	assert.ErrorIs(t, repo.CreateLocked(entity), repository.ErrAlreadyExists)

	entity.Name = "changed"
	assert.NoError(t, repo.SaveLocked(entity))
	assert.ErrorIs(t, repo.SaveLocked(repository.TestEntity{}), repository.ErrSaveFailed) //nolint:exhaustruct
	repo.Unlock()

	got, err := repo.Read(ctx, entity.ID)
	assert.NoError(t, err)
	assert.Equal(t, "changed", got.Name)
}
