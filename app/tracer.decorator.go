package app

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "mirrorhub.application"

func NewTracedRequest[Req any, Res any](traceProvider trace.TracerProvider, req Request[Req, Res]) Request[Req, Res] {
	tracer := traceProvider.Tracer(instrumentationName)

	return RequestFunc[Req, Res](func(ctx context.Context, in Req) (Res, error) {
		return traced(ctx, tracer, in, req.H)
	})
}

func NewTracedCommand[C any](traceProvider trace.TracerProvider, cmd Command[C]) Command[C] {
	tracer := traceProvider.Tracer(instrumentationName)

	return CommandFunc[C](func(ctx context.Context, in C) error {
		_, err := traced(ctx, tracer, in, noResult(cmd.H))

		return err
	})
}

func NewTracedQuery[Q any, Res any](traceProvider trace.TracerProvider, query Query[Q, Res]) Query[Q, Res] {
	tracer := traceProvider.Tracer(instrumentationName)

	return QueryFunc[Q, Res](func(ctx context.Context, in Q) (Res, error) {
		return traced(ctx, tracer, in, query.H)
	})
}

func traced[In any, Out any](ctx context.Context, tracer trace.Tracer, in In, next handle[In, Out]) (Out, error) {
	ctx, span := tracer.Start(ctx, "usecase",
		trace.WithAttributes(attribute.String("command", commandName(in))),
	)
	defer span.End()

	out, err := next(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return out, err
}
