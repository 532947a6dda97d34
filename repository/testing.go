package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type (
	TestEntityID string

	// TestEntity is used by TestSuite. A PostgresRepository needs the table:
	//
	//	CREATE TABLE test_entities (id TEXT PRIMARY KEY, name TEXT, score DOUBLE PRECISION, city TEXT);
	TestEntity struct {
		ID    TestEntityID `db:"id"`
		Name  string
		Score *float64
		TestEntityDetails
	}

	TestEntityDetails struct {
		City string
	}
)

// NewTestEntity returns a TestEntity with a new id and fake data.
func NewTestEntity() TestEntity {
	score := gofakeit.Float64Range(0, 100)

	return TestEntity{
		ID:                TestEntityID(uuid.New().String()),
		Name:              gofakeit.Name(),
		Score:             &score,
		TestEntityDetails: TestEntityDetails{City: gofakeit.City()},
	}
}

// TestSuite verifies an implementation of Repository behaves like all the others.
// newRepo has to return a new and empty repository on each call.
func TestSuite(
	t *testing.T,
	newRepo func(t *testing.T) Repository[TestEntity, TestEntityID],
) { //nolint:tparallel // t.Parallel can only be called once, the caller decides
	t.Helper()

	ctx := context.Background()

	t.Run("NextID", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)

		id0, err := repo.NextID(ctx)
		assert.NoError(t, err)
		id1, _ := repo.NextID(ctx)

		assert.NotEmpty(t, id0)
		assert.NotEqual(t, id0, id1)
	})

	t.Run("Create", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)
		entity := NewTestEntity()

		err := repo.Create(ctx, entity)
		assert.NoError(t, err)

		err = repo.Create(ctx, entity)
		assert.ErrorIs(t, err, ErrAlreadyExists)

		err = repo.Create(ctx, TestEntity{})
		assert.ErrorIs(t, err, ErrSaveFailed, "missing id")
	})

	t.Run("Read", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)
		entity := NewTestEntity()
		require.NoError(t, repo.Create(ctx, entity))

		got, err := repo.Read(ctx, entity.ID)
		assert.NoError(t, err)
		assert.Equal(t, entity, got)

		_, err = repo.Read(ctx, TestEntityID(uuid.New().String()))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Update", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)
		entity := NewTestEntity()

		err := repo.Update(ctx, entity)
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, repo.Create(ctx, entity))

		entity.Name = gofakeit.Name()
		entity.Score = nil
		err = repo.Update(ctx, entity)
		assert.NoError(t, err)

		got, _ := repo.Read(ctx, entity.ID)
		assert.Equal(t, entity, got)
	})

	t.Run("Save", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)
		entity := NewTestEntity()

		assert.NoError(t, repo.Save(ctx, entity), "create")

		entity.City = gofakeit.City()
		assert.NoError(t, repo.Save(ctx, entity), "update")

		got, _ := repo.Read(ctx, entity.ID)
		assert.Equal(t, entity, got)

		c, _ := repo.Count(ctx)
		assert.Equal(t, 1, c)
	})

	t.Run("DeleteByID", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)
		entity := NewTestEntity()
		require.NoError(t, repo.Create(ctx, entity))

		err := repo.DeleteByID(ctx, entity.ID)
		assert.NoError(t, err)

		ok, _ := repo.Exists(ctx, entity.ID)
		assert.False(t, ok)

		err = repo.DeleteByID(ctx, entity.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("All", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)

		all, err := repo.All(ctx)
		assert.NoError(t, err)
		assert.Empty(t, all)

		require.NoError(t, repo.Create(ctx, NewTestEntity()))
		require.NoError(t, repo.Create(ctx, NewTestEntity()))

		all, _ = repo.All(ctx)
		assert.Len(t, all, 2)
		assert.Less(t, string(all[0].ID), string(all[1].ID), "ordered by id")
	})

	t.Run("FindBy", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)

		e0 := NewTestEntity()
		e0.Name, e0.City = "b", "Berlin"
		e1 := NewTestEntity()
		e1.Name, e1.City = "a", "Berlin"
		e2 := NewTestEntity()
		e2.Name, e2.City = "c", "Paris"

		for _, e := range []TestEntity{e0, e1, e2} {
			require.NoError(t, repo.Create(ctx, e))
		}

		found, err := repo.FindBy(ctx,
			Filter(TestEntity{TestEntityDetails: TestEntityDetails{City: "Berlin"}}),
			OrderBy[TestEntity]("name"),
		)
		assert.NoError(t, err)
		assert.Equal(t, []TestEntity{e1, e0}, found)

		found, _ = repo.FindBy(ctx, Filter(TestEntity{Name: "c", TestEntityDetails: TestEntityDetails{City: "Berlin"}}))
		assert.Empty(t, found, "all set columns have to match")

		_, err = repo.FindBy(ctx, OrderBy[TestEntity]("unknown"))
		assert.ErrorIs(t, err, ErrStorage)
	})

	t.Run("Exists and Count", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)
		entity := NewTestEntity()

		ok, err := repo.Exists(ctx, entity.ID)
		assert.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, repo.Create(ctx, entity))

		ok, _ = repo.Exists(ctx, entity.ID)
		assert.True(t, ok)

		c, err := repo.Count(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 1, c)
	})

	t.Run("concurrent access", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)

		const workers = 100

		wg := sync.WaitGroup{}
		wg.Add(workers)

		for range workers {
			go func() {
				defer wg.Done()

				_ = repo.Save(ctx, NewTestEntity())
				_, _ = repo.All(ctx)
			}()
		}

		wg.Wait()

		c, _ := repo.Count(ctx)
		assert.Equal(t, workers, c)
	})
}
