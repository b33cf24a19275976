package transport

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu     sync.Mutex
	frames []string
	times  []time.Time
}

func (c *collector) add(b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, string(b))
	c.times = append(c.times, time.Now())
}

func (c *collector) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]string, len(c.frames))
	copy(cp, c.frames)
	return cp
}

func TestPipe_DeliversInOrder(t *testing.T) {
	a, b := Pipe(0)
	defer a.Close()
	defer b.Close()

	got := &collector{}
	b.OnMessage(got.add)

	for _, s := range []string{"one", "two", "three"} {
		require.NoError(t, a.Send([]byte(s)))
	}
	assert.Eventually(t, func() bool { return len(got.snapshot()) == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"one", "two", "three"}, got.snapshot())
}

func TestPipe_OpenedImmediately(t *testing.T) {
	a, b := Pipe(0)
	defer a.Close()
	defer b.Close()

	select {
	case <-a.Opened():
	default:
		t.Fatal("pipe end should start open")
	}
}

func TestPipe_AppliesLatency(t *testing.T) {
	a, b := Pipe(40 * time.Millisecond)
	defer a.Close()
	defer b.Close()

	got := &collector{}
	b.OnMessage(got.add)

	sent := time.Now()
	require.NoError(t, a.Send([]byte("x")))
	require.Eventually(t, func() bool { return len(got.snapshot()) == 1 }, time.Second, 5*time.Millisecond)

	got.mu.Lock()
	arrived := got.times[0]
	got.mu.Unlock()
	assert.GreaterOrEqual(t, arrived.Sub(sent), 40*time.Millisecond)
}

func TestPipe_SendAfterCloseFails(t *testing.T) {
	a, b := Pipe(0)
	require.NoError(t, b.Close())
	assert.ErrorIs(t, a.Send([]byte("x")), ErrClosed)
}

func TestPipe_SendCopiesBuffer(t *testing.T) {
	a, b := Pipe(0)
	defer a.Close()
	defer b.Close()

	got := &collector{}
	buf := []byte("abc")
	require.NoError(t, a.Send(buf))
	buf[0] = 'z'
	b.OnMessage(got.add)

	require.Eventually(t, func() bool { return len(got.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "abc", got.snapshot()[0])
}
