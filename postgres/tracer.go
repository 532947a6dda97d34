package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type spanKey struct{}

var _ pgx.QueryTracer = (*queryTracer)(nil)

// queryTracer starts a span for every query pgx executes.
type queryTracer struct {
	tracer trace.Tracer
}

func newQueryTracer(tp trace.TracerProvider) *queryTracer {
	return &queryTracer{tracer: tp.Tracer("mirrorhub.postgres")}
}

func (t *queryTracer) TraceQueryStart(
	ctx context.Context,
	conn *pgx.Conn,
	data pgx.TraceQueryStartData,
) context.Context {
	conf := conn.Config()

	ctx, span := t.tracer.Start(ctx, "query", trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.name", conf.Database),
		attribute.String("db.user", conf.User),
		attribute.String("net.peer.name", conf.Host),
		attribute.Int("net.peer.port", int(conf.Port)),
		attribute.String("db.statement", data.SQL),
		attribute.StringSlice("db.args", argsToStrings(data.Args)),
	))

	return context.WithValue(ctx, spanKey{}, span)
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	span, ok := ctx.Value(spanKey{}).(trace.Span)
	if !ok {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", data.CommandTag.RowsAffected()))

	if data.Err != nil {
		span.RecordError(data.Err)
		span.SetStatus(codes.Error, data.Err.Error())
	}

	span.End()
}

func argsToStrings(args []any) []string {
	s := make([]string, 0, len(args))
	for _, arg := range args {
		s = append(s, fmt.Sprintf("%v", arg))
	}

	return s
}
