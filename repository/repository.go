// Package repository offers a generic Repository with an in memory and a PostgreSQL implementation.
//
// Entities are plain structs. Their columns are taken from the `db` struct tags, falling back
// to the snake_case field name, and embedded structs are flattened.
// This is the same mapping scany uses to read rows back into the entity.
package repository

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrStorage       = errors.New("storage error")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrSaveFailed    = fmt.Errorf("%w: save failed", ErrStorage)
)

// Repository is implemented by MemoryRepository and PostgresRepository.
// Context repositories embed one of them and add their own queries.
type Repository[E any, ID id] interface {
	NextID(ctx context.Context) (ID, error)

	Create(ctx context.Context, entity E) error
	Read(ctx context.Context, id ID) (E, error)
	Update(ctx context.Context, entity E) error
	Save(ctx context.Context, entity E) error
	DeleteByID(ctx context.Context, id ID) error

	All(ctx context.Context) ([]E, error)
	FindBy(ctx context.Context, conditions ...Condition[E]) ([]E, error)
	Exists(ctx context.Context, id ID) (bool, error)
	Count(ctx context.Context) (int, error)
}

// id are the types allowed as a primary key. New ids are uuids.
type id interface {
	~string
}

// Condition influences which entities FindBy returns and in which order.
type Condition[E any] interface {
	Filter() E
	OrderBy() string
}

// Filter selects all entities, whose columns are equal to all non-zero columns of model.
func Filter[E any](model E) Condition[E] { //nolint:ireturn // hide the implementation
	return filter[E]{model: model}
}

// OrderBy sorts the result ascending by the given column.
func OrderBy[E any](column string) Condition[E] { //nolint:ireturn // hide the implementation
	return filter[E]{orderBy: column}
}

type filter[E any] struct {
	model   E
	orderBy string
}

func (f filter[E]) Filter() E { //nolint:ireturn // valid use of generics
	return f.model
}

func (f filter[E]) OrderBy() string {
	return f.orderBy
}

// Option configures a repository. Not every option is used by every implementation.
type Option func(config *repoConfig)

type repoConfig struct {
	idField  string
	table    string
	store    Store
	filename string
}

// WithIDField sets the name of the struct field used as the primary key, "ID" by default.
func WithIDField(fieldName string) Option {
	return func(config *repoConfig) {
		config.idField = fieldName
	}
}

// WithTable overwrites the table name of a PostgresRepository.
func WithTable(name string) Option {
	return func(config *repoConfig) {
		config.table = name
	}
}

// WithStore sets a Store used to persist a MemoryRepository.
//
// There are no transactions: if a store fails, the change is reverted in memory only.
func WithStore(store Store) Option {
	return func(config *repoConfig) {
		config.store = store
	}
}

// WithStoreFilename overwrites the file name the Store of a MemoryRepository uses.
func WithStoreFilename(name string) Option {
	return func(config *repoConfig) {
		config.filename = name
	}
}

func newRepoConfig[E any](opts ...Option) (repoConfig, error) {
	name := typeName[E]()

	config := repoConfig{
		idField:  "ID",
		table:    toSnakeCase(name) + "s",
		store:    noopStore{},
		filename: name + ".json",
	}

	for _, opt := range opts {
		opt(&config)
	}

	if _, ok := fieldsOf[E]().byField(config.idField); !ok {
		return config, fmt.Errorf("%w: entity %s has no id field %q", ErrStorage, name, config.idField)
	}

	return config, nil
}
