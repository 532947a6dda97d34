package app

import (
	"context"
	"log/slog"

	"github.com/go-arrower/mirrorhub/alog"
)

func NewLoggedRequest[Req any, Res any](logger alog.Logger, req Request[Req, Res]) Request[Req, Res] {
	return RequestFunc[Req, Res](func(ctx context.Context, in Req) (Res, error) {
		return logged(ctx, logger, "request", in, req.H)
	})
}

func NewLoggedCommand[C any](logger alog.Logger, cmd Command[C]) Command[C] {
	return CommandFunc[C](func(ctx context.Context, in C) error {
		_, err := logged(ctx, logger, "command", in, noResult(cmd.H))

		return err
	})
}

func NewLoggedQuery[Q any, Res any](logger alog.Logger, query Query[Q, Res]) Query[Q, Res] {
	return QueryFunc[Q, Res](func(ctx context.Context, in Q) (Res, error) {
		return logged(ctx, logger, "query", in, query.H)
	})
}

func logged[In any, Out any](
	ctx context.Context,
	logger alog.Logger,
	kind string,
	in In,
	next handle[In, Out],
) (Out, error) {
	name := slog.String("command", commandName(in))

	logger.DebugContext(ctx, "executing "+kind, name)

	out, err := next(ctx, in)
	if err != nil {
		logger.DebugContext(ctx, "failed to execute "+kind, name, slog.String("error", err.Error()))

		return out, err
	}

	logger.DebugContext(ctx, kind+" executed successfully", name)

	return out, nil
}
