package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/go-arrower/mirrorhub/postgres"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar) //nolint:gochecknoglobals // squirrel recommends this

// NewPostgresRepository returns an implementation of Repository for the entity E.
// The table defaults to the snake_case plural of the entity name, e.g. SystemResource => system_resources.
// If ctx carries a transaction, see postgres.WithTx, it is used instead of db.
func NewPostgresRepository[E any, ID id](db postgres.Querier, opts ...Option) (*PostgresRepository[E, ID], error) {
	config, err := newRepoConfig[E](opts...)
	if err != nil {
		return nil, err
	}

	fs := fieldsOf[E]()
	idField, _ := fs.byField(config.idField)

	return &PostgresRepository[E, ID]{
		DB:      db,
		Table:   config.table,
		fields:  fs,
		idField: idField,
	}, nil
}

// PostgresRepository implements Repository with squirrel for building and scany for scanning queries.
type PostgresRepository[E any, ID id] struct {
	DB    postgres.Querier
	Table string

	fields  fields
	idField field
}

var _ Repository[struct{ ID string }, string] = (*PostgresRepository[struct{ ID string }, string])(nil)

// Conn returns the transaction in ctx or the pool.
func (repo *PostgresRepository[E, ID]) Conn(ctx context.Context) postgres.Querier { //nolint:ireturn // see postgres.Conn
	return postgres.Conn(ctx, repo.DB)
}

// Columns returns all columns of E in the order of its fields.
func (repo *PostgresRepository[E, ID]) Columns() []string {
	return repo.fields.columns()
}

func (repo *PostgresRepository[E, ID]) NextID(_ context.Context) (ID, error) { //nolint:ireturn // valid use of generics
	return ID(uuid.New().String()), nil
}

func (repo *PostgresRepository[E, ID]) Create(ctx context.Context, entity E) error {
	if idOf[ID](entity, repo.idField) == "" {
		return fmt.Errorf("%w: missing id", ErrSaveFailed)
	}

	sql, args, err := psql.Insert(repo.Table).
		Columns(repo.fields.columns()...).
		Values(repo.fields.values(entity)...).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: could not build query: %w", ErrStorage, err)
	}

	if _, err = repo.Conn(ctx).Exec(ctx, sql, args...); err != nil {
		return MapError(err)
	}

	return nil
}

func (repo *PostgresRepository[E, ID]) Read(ctx context.Context, id ID) (E, error) { //nolint:ireturn // valid use of generics
	var entity E

	sql, args, err := psql.Select(repo.fields.columns()...).
		From(repo.Table).
		Where(squirrel.Eq{repo.idField.column: string(id)}).
		ToSql()
	if err != nil {
		return entity, fmt.Errorf("%w: could not build query: %w", ErrStorage, err)
	}

	if err = pgxscan.Get(ctx, repo.Conn(ctx), &entity, sql, args...); err != nil {
		return entity, MapError(err)
	}

	return entity, nil
}

func (repo *PostgresRepository[E, ID]) Update(ctx context.Context, entity E) error {
	set := map[string]any{}

	values := repo.fields.values(entity)
	for i, column := range repo.fields.columns() {
		if column != repo.idField.column {
			set[column] = values[i]
		}
	}

	sql, args, err := psql.Update(repo.Table).
		SetMap(set).
		Where(squirrel.Eq{repo.idField.column: string(idOf[ID](entity, repo.idField))}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: could not build query: %w", ErrStorage, err)
	}

	tag, err := repo.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return MapError(err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Save creates or updates entity.
func (repo *PostgresRepository[E, ID]) Save(ctx context.Context, entity E) error {
	if idOf[ID](entity, repo.idField) == "" {
		return fmt.Errorf("%w: missing id", ErrSaveFailed)
	}

	updates := make([]string, 0, len(repo.fields))

	for _, column := range repo.fields.columns() {
		if column != repo.idField.column {
			updates = append(updates, column+" = EXCLUDED."+column)
		}
	}

	sql, args, err := psql.Insert(repo.Table).
		Columns(repo.fields.columns()...).
		Values(repo.fields.values(entity)...).
		Suffix("ON CONFLICT (" + repo.idField.column + ") DO UPDATE SET " + strings.Join(updates, ", ")).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: could not build query: %w", ErrStorage, err)
	}

	if _, err = repo.Conn(ctx).Exec(ctx, sql, args...); err != nil {
		return MapError(err)
	}

	return nil
}

func (repo *PostgresRepository[E, ID]) DeleteByID(ctx context.Context, id ID) error {
	sql, args, err := psql.Delete(repo.Table).
		Where(squirrel.Eq{repo.idField.column: string(id)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: could not build query: %w", ErrStorage, err)
	}

	tag, err := repo.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return MapError(err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// All returns all entities ordered by id.
func (repo *PostgresRepository[E, ID]) All(ctx context.Context) ([]E, error) {
	return repo.FindBy(ctx)
}

func (repo *PostgresRepository[E, ID]) FindBy(ctx context.Context, conditions ...Condition[E]) ([]E, error) {
	query := psql.Select(repo.fields.columns()...).From(repo.Table)
	orderBy := repo.idField.column

	for _, c := range conditions {
		if c.OrderBy() != "" {
			if _, ok := repo.fields.byColumn(c.OrderBy()); !ok {
				return nil, fmt.Errorf("%w: unknown column %q", ErrStorage, c.OrderBy())
			}

			orderBy = c.OrderBy()
		}

		if where := repo.fields.nonZero(c.Filter()); len(where) > 0 {
			query = query.Where(squirrel.Eq(where))
		}
	}

	sql, args, err := query.OrderBy(orderBy).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: could not build query: %w", ErrStorage, err)
	}

	entities := []E{}
	if err = pgxscan.Select(ctx, repo.Conn(ctx), &entities, sql, args...); err != nil {
		return nil, MapError(err)
	}

	return entities, nil
}

func (repo *PostgresRepository[E, ID]) Exists(ctx context.Context, id ID) (bool, error) {
	sql, args, err := psql.Select("1").
		Prefix("SELECT EXISTS (").
		From(repo.Table).
		Where(squirrel.Eq{repo.idField.column: string(id)}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: could not build query: %w", ErrStorage, err)
	}

	var exists bool
	if err = repo.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, MapError(err)
	}

	return exists, nil
}

func (repo *PostgresRepository[E, ID]) Count(ctx context.Context) (int, error) {
	sql, args, err := psql.Select("COUNT(*)").From(repo.Table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: could not build query: %w", ErrStorage, err)
	}

	var count int
	if err = repo.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, MapError(err)
	}

	return count, nil
}

// MapError translates driver errors into the errors of this package.
// Repositories running their own queries use it, too.
func MapError(err error) error {
	if pgxscan.NotFound(err) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, pgErr.ConstraintName)
	}

	return fmt.Errorf("%w: %w", ErrStorage, err)
}
