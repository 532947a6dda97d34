package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/go-arrower/mirrorhub/postgres"
)

// TxBeginner starts a transaction, e.g. *pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// NewTxRequest runs req in a transaction, that is committed if req succeeds and rolled back otherwise.
// Repositories pick up the transaction from the context, see postgres.Conn.
func NewTxRequest[Req any, Res any](db TxBeginner, req Request[Req, Res]) Request[Req, Res] {
	return RequestFunc[Req, Res](func(ctx context.Context, in Req) (Res, error) {
		return inTx(ctx, db, in, req.H)
	})
}

func NewTxCommand[C any](db TxBeginner, cmd Command[C]) Command[C] {
	return CommandFunc[C](func(ctx context.Context, in C) error {
		_, err := inTx(ctx, db, in, noResult(cmd.H))

		return err
	})
}

func inTx[In any, Out any](ctx context.Context, db TxBeginner, in In, next handle[In, Out]) (Out, error) {
	if db == nil { // no database configured, e.g. in memory repositories
		return next(ctx, in)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return *new(Out), fmt.Errorf("could not start transaction: %w", err)
	}

	out, err := next(postgres.WithTx(ctx, tx), in)
	if err != nil {
		if rb := tx.Rollback(ctx); rb != nil {
			return *new(Out), fmt.Errorf("could not rollback transaction: %w: %w", rb, err)
		}

		return out, err
	}

	if err = tx.Commit(ctx); err != nil {
		return *new(Out), fmt.Errorf("could not commit transaction: %w", err)
	}

	return out, nil
}
