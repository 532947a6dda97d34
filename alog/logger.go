// Package alog is the structured logger of mirrorhub, built on log/slog.
package alog

import (
	"context"
	"log/slog"
)

// Logger is the subset of slog.Logger the application depends on.
// It favours the context aware methods, so log records can be correlated with traces.
type Logger interface {
	Log(ctx context.Context, level slog.Level, msg string, args ...any)
	LogAttrs(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr)
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

var _ Logger = (*slog.Logger)(nil)

const (
	// LevelInfo is used to see what is going on inside the infrastructure,
	// e.g. which geolocation provider answered.
	LevelInfo = slog.Level(-8)

	// LevelDebug is used if you really want to know what is going on.
	LevelDebug = slog.Level(-12)
)

// MapLogLevelsToName replaces the default name of the custom levels with a speaking name.
func MapLogLevelsToName(_ []string, attr slog.Attr) slog.Attr {
	if attr.Key != slog.LevelKey {
		return attr
	}

	level, _ := attr.Value.Any().(slog.Level)

	switch level {
	case LevelInfo:
		attr.Value = slog.StringValue("MIRRORHUB:INFO")
	case LevelDebug:
		attr.Value = slog.StringValue("MIRRORHUB:DEBUG")
	}

	return attr
}

type ctxKey struct{}

// AddAttr adds a single attribute to ctx. All attributes in the context
// are added to each record logged with that context.
func AddAttr(ctx context.Context, attr slog.Attr) context.Context {
	return AddAttrs(ctx, attr)
}

// AddAttrs adds attributes to ctx, see AddAttr.
func AddAttrs(ctx context.Context, newAttrs ...slog.Attr) context.Context {
	attrs, _ := FromContext(ctx)

	all := make([]slog.Attr, 0, len(attrs)+len(newAttrs))
	all = append(all, attrs...)
	all = append(all, newAttrs...)

	return context.WithValue(ctx, ctxKey{}, all)
}

// FromContext returns the attributes stored in ctx.
func FromContext(ctx context.Context) ([]slog.Attr, bool) {
	attrs, ok := ctx.Value(ctxKey{}).([]slog.Attr)

	return attrs, ok
}
