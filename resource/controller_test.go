package resource

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControllerWorkers(t *testing.T) {
	c := NewController(Config{MaxWorkers: 2})

	require.NoError(t, c.AcquireWorker(context.Background()))
	require.NoError(t, c.AcquireWorker(context.Background()))

	assert.False(t, c.TryAcquireWorker())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireWorker(ctx), context.DeadlineExceeded)

	c.ReleaseWorker()
	assert.True(t, c.TryAcquireWorker())
}

func TestControllerDefaultWorkers(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireWorker(context.Background()))
	assert.False(t, c.TryAcquireWorker())
	c.ReleaseWorker()
}

func TestControllerUnlimitedIO(t *testing.T) {
	c := NewController(Config{})
	assert.NoError(t, c.WaitIO(context.Background(), 1<<30))

	// A nil controller never throttles.
	var nilC *Controller
	assert.NoError(t, nilC.WaitIO(context.Background(), 1<<30))
}

func TestControllerIOThrottle(t *testing.T) {
	// 1 KB/s budget with 1 KB burst: the first KB is free, the next waits.
	c := NewController(Config{IOLimitBytesPerSec: 1024})

	require.NoError(t, c.WaitIO(context.Background(), 1024))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.WaitIO(ctx, 1024))
}

func TestRateLimitedWriter(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})

	var buf bytes.Buffer
	w := NewRateLimitedWriter(context.Background(), &buf, c)

	n, err := w.Write([]byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, "payload", buf.String())
}

func TestRateLimitedWriterChunksLargeWrites(t *testing.T) {
	// A single write above the burst (one second's budget) must be split
	// into burst-sized chunks and throttled, not rejected.
	c := NewController(Config{IOLimitBytesPerSec: 64 << 10})

	payload := bytes.Repeat([]byte{0xA7}, 80<<10)
	var buf bytes.Buffer
	w := NewRateLimitedWriter(context.Background(), &buf, c)

	n, err := w.Write(payload)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)
	assert.Equal(t, payload, buf.Bytes())
}

func TestRateLimitedWriterCanceledMidWrite(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 16})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	w := NewRateLimitedWriter(ctx, &buf, c)

	_, err := w.Write(bytes.Repeat([]byte{1}, 64))
	assert.Error(t, err)
}

func TestRateLimitedReader(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})

	r := NewRateLimitedReader(context.Background(), bytes.NewReader([]byte("payload")), c)

	p := make([]byte, 4)
	n, err := r.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "payl", string(p))
}

func TestRateLimitedReaderCapsAtBurst(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 8})

	r := NewRateLimitedReader(context.Background(), bytes.NewReader([]byte("0123456789abcdef")), c)

	// A buffer above the burst is served in burst-sized reads.
	p := make([]byte, 16)
	n, err := r.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, "01234567", string(p[:n]))
}
