package alog

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// LoggerOpt allows to initialise a logger with custom options.
type LoggerOpt func(h *fanoutHandler)

// WithHandler adds a slog.Handler to be logged to.
// You can set as many as you want.
func WithHandler(h slog.Handler) LoggerOpt {
	return func(l *fanoutHandler) {
		l.handlers = append(l.handlers, h)
	}
}

// WithLevel initialises the logger with a starting level.
// To change the level at run time use SetLevel.
func WithLevel(level slog.Level) LoggerOpt {
	return func(l *fanoutHandler) {
		l.level.Set(level)
	}
}

// New returns a production ready logger.
//
// If no handler is given, it logs JSON to os.Stderr.
func New(opts ...LoggerOpt) *slog.Logger {
	return slog.New(newFanoutHandler(opts...))
}

// NewDevelopment returns a logger for local development, logging human-readable text at debug level.
func NewDevelopment() *slog.Logger {
	return New(
		WithLevel(slog.LevelDebug),
		WithHandler(slog.NewTextHandler(os.Stderr, debugHandlerOptions())),
	)
}

func newFanoutHandler(opts ...LoggerOpt) *fanoutHandler {
	h := &fanoutHandler{
		level:    &slog.LevelVar{},
		handlers: []slog.Handler{},
	}
	h.level.Set(slog.LevelInfo)

	for _, opt := range opts {
		opt(h)
	}

	if len(h.handlers) == 0 {
		h.handlers = []slog.Handler{slog.NewJSONHandler(os.Stderr, defaultHandlerOptions())}
	}

	return h
}

// fanoutHandler sends each record to all its handlers.
// The level of the individual handlers is ignored, only the level of fanoutHandler counts.
// Each record is enriched with the trace and span ids of the active span and
// the attributes stored in the context via AddAttr.
type fanoutHandler struct {
	level    *slog.LevelVar
	handlers []slog.Handler
}

var _ slog.Handler = (*fanoutHandler)(nil)

func (h *fanoutHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	span := trace.SpanFromContext(ctx)

	if sCtx := span.SpanContext(); sCtx.IsValid() {
		record.AddAttrs(
			slog.String("traceID", sCtx.TraceID().String()),
			slog.String("spanID", sCtx.SpanID().String()),
		)
	}

	if attrs, ok := FromContext(ctx); ok {
		record.AddAttrs(attrs...)
	}

	if span.IsRecording() {
		span.AddEvent("log", trace.WithAttributes(
			attribute.String("log.severity", record.Level.String()),
			attribute.String("log.message", record.Message),
		))

		if record.Level >= slog.LevelError {
			span.SetStatus(codes.Error, record.Message)
		}
	}

	var err error

	for _, handler := range h.handlers {
		err = errors.Join(err, handler.Handle(ctx, record.Clone()))
	}

	return err
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}

	return &fanoutHandler{level: h.level, handlers: handlers}
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}

	return &fanoutHandler{level: h.level, handlers: handlers}
}

// LevelController gives control over the level of a logger at run time.
type LevelController interface {
	SetLevel(level slog.Level)
	Level() slog.Level
}

func (h *fanoutHandler) SetLevel(level slog.Level) {
	h.level.Set(level)
}

func (h *fanoutHandler) Level() slog.Level {
	return h.level.Level()
}

// Unwrap returns the LevelController of a logger created by this package.
// For any other logger it returns nil.
func Unwrap(logger *slog.Logger) LevelController { //nolint:ireturn // expose only the control methods
	if logger == nil {
		return nil
	}

	if h, ok := logger.Handler().(*fanoutHandler); ok {
		return h
	}

	return nil
}

func defaultHandlerOptions() *slog.HandlerOptions {
	return &slog.HandlerOptions{
		AddSource:   true,
		Level:       slog.Level(-100), // filtering is done by fanoutHandler
		ReplaceAttr: MapLogLevelsToName,
	}
}

func debugHandlerOptions() *slog.HandlerOptions {
	opt := defaultHandlerOptions()
	opt.AddSource = false

	return opt
}
