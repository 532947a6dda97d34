package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// NewMemoryRepository returns an implementation of Repository for the entity E.
// It is expected that E has a field called `ID`, see WithIDField.
// Data persisted by a Store is loaded on creation.
//
// Warning: the consistency of MemoryRepository is not on par with the ACID guarantees of a RDBMS.
// Use it for unit tests and local development.
func NewMemoryRepository[E any, ID id](opts ...Option) (*MemoryRepository[E, ID], error) {
	config, err := newRepoConfig[E](opts...)
	if err != nil {
		return nil, err
	}

	fs := fieldsOf[E]()
	idField, _ := fs.byField(config.idField)

	repo := &MemoryRepository[E, ID]{
		Mutex:   &sync.Mutex{},
		Data:    make(map[ID]E),
		fields:  fs,
		idField: idField,
		config:  config,
	}

	err = config.store.Load(config.filename, &repo.Data)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("could not load data for memory repository: %w", err)
	}

	return repo, nil
}

// MemoryRepository implements Repository in memory.
// Repositories embedding it can use the Mutex and Data to implement their own queries.
type MemoryRepository[E any, ID id] struct {
	*sync.Mutex

	// Data is the collection. Lock the Mutex before accessing it.
	Data map[ID]E

	fields  fields
	idField field
	config  repoConfig
}

var _ Repository[struct{ ID string }, string] = (*MemoryRepository[struct{ ID string }, string])(nil)

func (repo *MemoryRepository[E, ID]) NextID(_ context.Context) (ID, error) { //nolint:ireturn // valid use of generics
	return ID(uuid.New().String()), nil
}

func (repo *MemoryRepository[E, ID]) id(entity E) ID { //nolint:ireturn // valid use of generics
	return idOf[ID](entity, repo.idField)
}

func (repo *MemoryRepository[E, ID]) Create(_ context.Context, entity E) error {
	repo.Lock()
	defer repo.Unlock()

	return repo.CreateLocked(entity)
}

// CreateLocked is Create for callers already holding the Mutex,
// e.g. to check a constraint and create entity atomically.
func (repo *MemoryRepository[E, ID]) CreateLocked(entity E) error {
	id := repo.id(entity)
	if id == "" {
		return fmt.Errorf("%w: missing id", ErrSaveFailed)
	}

	if _, found := repo.Data[id]; found {
		return ErrAlreadyExists
	}

	repo.Data[id] = entity

	if err := repo.persist(); err != nil {
		delete(repo.Data, id)

		return err
	}

	return nil
}

func (repo *MemoryRepository[E, ID]) Read(_ context.Context, id ID) (E, error) { //nolint:ireturn // valid use of generics
	repo.Lock()
	defer repo.Unlock()

	if e, ok := repo.Data[id]; ok {
		return e, nil
	}

	return *new(E), ErrNotFound
}

func (repo *MemoryRepository[E, ID]) Update(_ context.Context, entity E) error {
	repo.Lock()
	defer repo.Unlock()

	id := repo.id(entity)

	old, found := repo.Data[id]
	if !found {
		return ErrNotFound
	}

	repo.Data[id] = entity

	if err := repo.persist(); err != nil {
		repo.Data[id] = old

		return err
	}

	return nil
}

// Save creates or updates entity.
func (repo *MemoryRepository[E, ID]) Save(_ context.Context, entity E) error {
	repo.Lock()
	defer repo.Unlock()

	return repo.SaveLocked(entity)
}

// SaveLocked is Save for callers already holding the Mutex.
func (repo *MemoryRepository[E, ID]) SaveLocked(entity E) error {
	id := repo.id(entity)
	if id == "" {
		return fmt.Errorf("%w: missing id", ErrSaveFailed)
	}

	old, found := repo.Data[id]
	repo.Data[id] = entity

	if err := repo.persist(); err != nil {
		if found {
			repo.Data[id] = old
		} else {
			delete(repo.Data, id)
		}

		return err
	}

	return nil
}

func (repo *MemoryRepository[E, ID]) DeleteByID(_ context.Context, id ID) error {
	repo.Lock()
	defer repo.Unlock()

	old, found := repo.Data[id]
	if !found {
		return ErrNotFound
	}

	delete(repo.Data, id)

	if err := repo.persist(); err != nil {
		repo.Data[id] = old

		return err
	}

	return nil
}

// All returns all entities ordered by id.
func (repo *MemoryRepository[E, ID]) All(ctx context.Context) ([]E, error) {
	return repo.FindBy(ctx)
}

func (repo *MemoryRepository[E, ID]) FindBy(_ context.Context, conditions ...Condition[E]) ([]E, error) {
	repo.Lock()
	defer repo.Unlock()

	orderBy := repo.idField

	var wheres []map[string]any

	for _, c := range conditions {
		if c.OrderBy() != "" {
			f, ok := repo.fields.byColumn(c.OrderBy())
			if !ok {
				return nil, fmt.Errorf("%w: unknown column %q", ErrStorage, c.OrderBy())
			}

			orderBy = f
		}

		if where := repo.fields.nonZero(c.Filter()); len(where) > 0 {
			wheres = append(wheres, where)
		}
	}

	result := []E{}

	for _, e := range repo.Data {
		if repo.matches(e, wheres) {
			result = append(result, e)
		}
	}

	slices.SortStableFunc(result, func(a, b E) int {
		va := reflect.ValueOf(a).FieldByIndex(orderBy.index)
		vb := reflect.ValueOf(b).FieldByIndex(orderBy.index)

		switch {
		case less(va, vb):
			return -1
		case less(vb, va):
			return 1
		default:
			return 0
		}
	})

	return result, nil
}

func (repo *MemoryRepository[E, ID]) matches(entity E, wheres []map[string]any) bool {
	val := reflect.ValueOf(entity)

	for _, where := range wheres {
		for column, want := range where {
			f, _ := repo.fields.byColumn(column)
			if !reflect.DeepEqual(val.FieldByIndex(f.index).Interface(), want) {
				return false
			}
		}
	}

	return true
}

func (repo *MemoryRepository[E, ID]) Exists(_ context.Context, id ID) (bool, error) {
	repo.Lock()
	defer repo.Unlock()

	_, found := repo.Data[id]

	return found, nil
}

func (repo *MemoryRepository[E, ID]) Count(_ context.Context) (int, error) {
	repo.Lock()
	defer repo.Unlock()

	return len(repo.Data), nil
}

// Persist writes Data to the Store. The Mutex has to be locked by the caller.
// Repositories embedding MemoryRepository call it after changing Data.
func (repo *MemoryRepository[E, ID]) Persist() error {
	return repo.persist()
}

func (repo *MemoryRepository[E, ID]) persist() error {
	if err := repo.config.store.Store(repo.config.filename, repo.Data); err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	return nil
}
