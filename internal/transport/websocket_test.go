package transport

import (
	"context"
	"net/http"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitOpen(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatal("channel did not open")
	}
}

func TestWebsocket_HostGuestExchange(t *testing.T) {
	host, err := Listen("127.0.0.1:0", zerolog.Nop())
	require.NoError(t, err)
	defer host.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	guest := Dial(ctx, host.URL("127.0.0.1"), zerolog.Nop())
	defer guest.Close()

	hostGot := &collector{}
	guestGot := &collector{}
	host.OnMessage(hostGot.add)
	guest.OnMessage(guestGot.add)

	// Queued before the connection exists.
	require.NoError(t, guest.Send([]byte(`{"type":"answer","topic":"name","data":"bob"}`)))

	waitOpen(t, host.Opened())
	waitOpen(t, guest.Opened())

	require.NoError(t, host.Send([]byte("hello guest")))

	assert.Eventually(t, func() bool { return len(hostGot.snapshot()) == 1 }, 3*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return len(guestGot.snapshot()) == 1 }, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, `{"type":"answer","topic":"name","data":"bob"}`, hostGot.snapshot()[0])
	assert.Equal(t, "hello guest", guestGot.snapshot()[0])
}

func TestWebsocket_SecondGuestRejected(t *testing.T) {
	host, err := Listen("127.0.0.1:0", zerolog.Nop())
	require.NoError(t, err)
	defer host.Close()

	first, _, err := ws.DefaultDialer.Dial(host.URL("127.0.0.1"), nil)
	require.NoError(t, err)
	defer first.Close()

	_, resp, err := ws.DefaultDialer.Dial(host.URL("127.0.0.1"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestWebsocket_LostOnPeerClose(t *testing.T) {
	host, err := Listen("127.0.0.1:0", zerolog.Nop())
	require.NoError(t, err)
	defer host.Close()

	guest := Dial(context.Background(), host.URL("127.0.0.1"), zerolog.Nop())
	waitOpen(t, host.Opened())
	waitOpen(t, guest.Opened())

	require.NoError(t, guest.Close())
	select {
	case <-host.Lost():
	case <-time.After(3 * time.Second):
		t.Fatal("host did not notice the guest leaving")
	}
}

func TestWebsocket_SendAfterClose(t *testing.T) {
	c := newConn(zerolog.Nop())
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Send([]byte("x")), ErrClosed)
}

func TestWebsocket_DialGivesUpWithContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	c := Dial(ctx, "ws://127.0.0.1:1"+Path, zerolog.Nop())
	defer c.Close()

	<-ctx.Done()
	select {
	case <-c.Opened():
		t.Fatal("dial to a closed port should never open")
	case <-time.After(50 * time.Millisecond):
	}
}
