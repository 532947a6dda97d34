package cmd

import (
	"bytes"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// mu serialises TestExecute, as it swaps the global os.Stdout and os.Stderr.
var mu sync.Mutex

// TestExecute executes command with args and returns everything it wrote,
// to its own writers and to os.Stdout and os.Stderr.
func TestExecute(t *testing.T, command *cobra.Command, args ...string) (string, error) {
	t.Helper()

	mu.Lock()
	defer mu.Unlock()

	out := &syncBuffer{}
	command.SetOut(out)
	command.SetErr(out)
	command.SetArgs(args)

	var cmdErr error

	captured := captureOS(t, func() {
		_, cmdErr = command.ExecuteC()
	})

	out.WriteString(captured)

	return out.String(), cmdErr
}

// captureOS returns what f writes to os.Stdout and os.Stderr.
func captureOS(t *testing.T, f func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	stdout, stderr := os.Stdout, os.Stderr
	os.Stdout, os.Stderr = w, w

	done := make(chan string)

	go func() {
		all, _ := io.ReadAll(r)
		done <- string(all)
	}()

	f()

	os.Stdout, os.Stderr = stdout, stderr
	require.NoError(t, w.Close())

	return <-done
}

type syncBuffer struct {
	b bytes.Buffer
	m sync.Mutex
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.m.Lock()
	defer b.m.Unlock()

	return b.b.Write(p) //nolint:wrapcheck
}

func (b *syncBuffer) WriteString(s string) {
	b.m.Lock()
	defer b.m.Unlock()

	b.b.WriteString(s)
}

func (b *syncBuffer) String() string {
	b.m.Lock()
	defer b.m.Unlock()

	return b.b.String()
}
