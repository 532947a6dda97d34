package app

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type meters struct {
	counter  metric.Int64Counter
	duration metric.Float64Histogram
}

func newMeters(meterProvider metric.MeterProvider) meters {
	meter := meterProvider.Meter(instrumentationName)

	// errors only occur for invalid names, which these are not
	counter, _ := meter.Int64Counter("usecases", metric.WithDescription("number of executed use cases"))
	duration, _ := meter.Float64Histogram("usecases_duration_seconds",
		metric.WithDescription("duration of executed use cases"),
		metric.WithUnit("s"),
	)

	return meters{counter: counter, duration: duration}
}

func NewMeteredRequest[Req any, Res any](meterProvider metric.MeterProvider, req Request[Req, Res]) Request[Req, Res] {
	m := newMeters(meterProvider)

	return RequestFunc[Req, Res](func(ctx context.Context, in Req) (Res, error) {
		return metered(ctx, m, in, req.H)
	})
}

func NewMeteredCommand[C any](meterProvider metric.MeterProvider, cmd Command[C]) Command[C] {
	m := newMeters(meterProvider)

	return CommandFunc[C](func(ctx context.Context, in C) error {
		_, err := metered(ctx, m, in, noResult(cmd.H))

		return err
	})
}

func NewMeteredQuery[Q any, Res any](meterProvider metric.MeterProvider, query Query[Q, Res]) Query[Q, Res] {
	m := newMeters(meterProvider)

	return QueryFunc[Q, Res](func(ctx context.Context, in Q) (Res, error) {
		return metered(ctx, m, in, query.H)
	})
}

func metered[In any, Out any](ctx context.Context, m meters, in In, next handle[In, Out]) (Out, error) {
	start := time.Now()

	out, err := next(ctx, in)

	status := "success"
	if err != nil {
		status = "failure"
	}

	opt := metric.WithAttributes(
		attribute.String("command", commandName(in)),
		attribute.String("status", status),
	)

	m.counter.Add(ctx, 1, opt)
	m.duration.Record(ctx, time.Since(start).Seconds(), opt)

	return out, err
}
