package postgres_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"

	"github.com/go-arrower/mirrorhub/postgres"
)

var ctx = context.Background()

// fakeTx is only stored and compared, never called.
type fakeTx struct {
	pgx.Tx
}

func TestTxFromContext(t *testing.T) {
	t.Parallel()

	t.Run("no tx", func(t *testing.T) {
		t.Parallel()

		tx, ok := postgres.TxFromContext(ctx)
		assert.False(t, ok)
		assert.Nil(t, tx)
	})

	t.Run("nil tx", func(t *testing.T) {
		t.Parallel()

		_, ok := postgres.TxFromContext(postgres.WithTx(ctx, nil))
		assert.False(t, ok)
	})

	t.Run("tx", func(t *testing.T) {
		t.Parallel()

		tx := &fakeTx{}

		got, ok := postgres.TxFromContext(postgres.WithTx(ctx, tx))
		assert.True(t, ok)
		assert.Same(t, tx, got)
	})
}

func TestConn(t *testing.T) {
	t.Parallel()

	pool := &pgxpool.Pool{}

	t.Run("fallback without tx", func(t *testing.T) {
		t.Parallel()

		assert.Same(t, pool, postgres.Conn(ctx, pool))
	})

	t.Run("prefer tx", func(t *testing.T) {
		t.Parallel()

		tx := &fakeTx{}

		assert.Same(t, tx, postgres.Conn(postgres.WithTx(ctx, tx), pool))
	})
}
