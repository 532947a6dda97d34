// Package app provides the shapes of use cases and the decorators wrapping them in the application layer.
package app

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-arrower/mirrorhub/alog"
)

// Request can produce side effects and return data.
type Request[Req any, Res any] interface {
	H(ctx context.Context, req Req) (Res, error)
}

// Command produces side effects, e.g. mutate state.
type Command[C any] interface {
	H(ctx context.Context, cmd C) error
}

// Query does not produce side effects and returns data.
type Query[Q any, Res any] interface {
	H(ctx context.Context, query Q) (Res, error)
}

// RequestFunc turns a function into a Request.
type RequestFunc[Req any, Res any] func(ctx context.Context, req Req) (Res, error)

func (f RequestFunc[Req, Res]) H(ctx context.Context, req Req) (Res, error) { //nolint:ireturn // valid use of generics
	return f(ctx, req)
}

// CommandFunc turns a function into a Command.
type CommandFunc[C any] func(ctx context.Context, cmd C) error

func (f CommandFunc[C]) H(ctx context.Context, cmd C) error {
	return f(ctx, cmd)
}

// QueryFunc turns a function into a Query.
type QueryFunc[Q any, Res any] func(ctx context.Context, query Q) (Res, error)

func (f QueryFunc[Q, Res]) H(ctx context.Context, query Q) (Res, error) { //nolint:ireturn // valid use of generics
	return f(ctx, query)
}

// NewInstrumentedRequest is a convenience helper for easy dependency setup.
// The order of dependencies represents the order of calling.
func NewInstrumentedRequest[Req any, Res any](
	traceProvider trace.TracerProvider,
	meterProvider metric.MeterProvider,
	logger alog.Logger,
	req Request[Req, Res],
) Request[Req, Res] {
	return NewTracedRequest(traceProvider, NewMeteredRequest(meterProvider, NewLoggedRequest(logger, req)))
}

// NewInstrumentedCommand is a convenience helper for easy dependency setup.
// The order of dependencies represents the order of calling.
func NewInstrumentedCommand[C any](
	traceProvider trace.TracerProvider,
	meterProvider metric.MeterProvider,
	logger alog.Logger,
	cmd Command[C],
) Command[C] {
	return NewTracedCommand(traceProvider, NewMeteredCommand(meterProvider, NewLoggedCommand(logger, cmd)))
}

// NewInstrumentedQuery is a convenience helper for easy dependency setup.
// The order of dependencies represents the order of calling.
func NewInstrumentedQuery[Q any, Res any](
	traceProvider trace.TracerProvider,
	meterProvider metric.MeterProvider,
	logger alog.Logger,
	query Query[Q, Res],
) Query[Q, Res] {
	return NewTracedQuery(traceProvider, NewMeteredQuery(meterProvider, NewLoggedQuery(logger, query)))
}

// handle is the common signature all decorators work with.
type handle[In any, Out any] func(ctx context.Context, in In) (Out, error)

// noResult adapts a Command so it can be decorated like a Request.
func noResult[In any](h func(ctx context.Context, in In) error) handle[In, struct{}] {
	return func(ctx context.Context, in In) (struct{}, error) {
		return struct{}{}, h(ctx, in)
	}
}

// commandName returns a printable name of the use case's input type, e.g. systems.CreateSystemRequest.
// Inside a Context it is prefixed with the Context's name, otherwise with the package name.
func commandName(in any) string {
	t := reflect.TypeOf(in)
	if t == nil {
		return "<nil>"
	}

	// github.com/go-arrower/mirrorhub/contexts/systems/internal/application => systems
	if _, after, ok := strings.Cut(t.PkgPath(), "/contexts/"); ok {
		if name, _, ok := strings.Cut(after, "/"); ok {
			return name + "." + t.Name()
		}
	}

	return fmt.Sprintf("%T", in)
}
