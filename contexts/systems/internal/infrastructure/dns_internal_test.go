package infrastructure

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemResolver_LookupIPv4_timeout(t *testing.T) {
	t.Parallel()

	silent, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	t.Cleanup(func() { _ = silent.Close() })

	resolver := &SystemResolver{resolver: &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer

			return d.DialContext(ctx, "udp", silent.LocalAddr().String())
		},
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err = resolver.LookupIPv4(ctx, "mirror.example.org")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTimedOut(t *testing.T) {
	t.Parallel()

	timeout := &net.DNSError{Err: "i/o timeout", Name: "mirror.example.org", IsTimeout: true}
	assert.ErrorIs(t, timedOut(timeout), context.DeadlineExceeded)
	assert.ErrorIs(t, timedOut(timeout), timeout)

	notFound := &net.DNSError{Err: "no such host", Name: "mirror.example.org", IsNotFound: true}
	assert.NotErrorIs(t, timedOut(notFound), context.DeadlineExceeded)
}
