package alog

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test returns a logger tuned for unit testing, logging everything down to LevelDebug.
// The assertions follow stretchr/testify: each returns whether it was successful.
func Test(t *testing.T) *TestLogger {
	t.Helper()

	buf := &lineBuffer{}

	return &TestLogger{
		Logger: New(
			WithLevel(LevelDebug),
			WithHandler(slog.NewTextHandler(buf, debugHandlerOptions())),
		),
		t:   t,
		buf: buf,
	}
}

// TestLogger can be injected wherever a *slog.Logger or Logger is expected.
type TestLogger struct {
	*slog.Logger

	t   *testing.T
	buf *lineBuffer
}

var _ Logger = (*TestLogger)(nil)

// String returns the complete log output.
func (l *TestLogger) String() string {
	return strings.Join(l.Lines(), "")
}

func (l *TestLogger) Lines() []string {
	l.buf.mu.Lock()
	defer l.buf.mu.Unlock()

	lines := make([]string, 0, len(l.buf.lines))
	for _, line := range l.buf.lines {
		lines = append(lines, line.String())
	}

	return lines
}

// Empty asserts that nothing was logged.
func (l *TestLogger) Empty(msgAndArgs ...any) bool {
	l.t.Helper()

	if n := len(l.Lines()); n > 0 {
		return assert.Fail(l.t, fmt.Sprintf("logger is not empty, it has %d line(s)", n), msgAndArgs...)
	}

	return true
}

// Contains asserts that at least one line contains the given substring.
func (l *TestLogger) Contains(contains string, msgAndArgs ...any) bool {
	l.t.Helper()

	for _, line := range l.Lines() {
		if strings.Contains(line, contains) {
			return true
		}
	}

	return assert.Fail(l.t, "log output does not have a line which contains: "+contains, msgAndArgs...)
}

// NotContains asserts that no line contains the given substring.
func (l *TestLogger) NotContains(notContains string, msgAndArgs ...any) bool {
	l.t.Helper()

	for _, line := range l.Lines() {
		if strings.Contains(line, notContains) {
			return assert.Fail(l.t, "log output contains: "+notContains+", should not be", msgAndArgs...)
		}
	}

	return true
}

// Total asserts that exactly total lines are logged.
func (l *TestLogger) Total(total int, msgAndArgs ...any) bool {
	l.t.Helper()

	if n := len(l.Lines()); n != total {
		return assert.Fail(l.t, fmt.Sprintf("logger does not have %d lines, it has: %d", total, n), msgAndArgs...)
	}

	return true
}

// lineBuffer keeps each Write as its own line. slog handlers write each record in one call.
type lineBuffer struct {
	mu    sync.Mutex
	lines []*bytes.Buffer
}

func (b *lineBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	line := &bytes.Buffer{}
	n, err := line.Write(p)
	b.lines = append(b.lines, line)

	return n, err //nolint:wrapcheck // bytes.Buffer never fails
}
