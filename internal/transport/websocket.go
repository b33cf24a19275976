package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Path is the HTTP path the host accepts its guest on.
const Path = "/peer"

const (
	sendChSize     = 1024
	writeWait      = 10 * time.Second
	initialBackoff = 250 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

var (
	ErrClosed         = errors.New("transport closed")
	ErrSendBufferFull = errors.New("send buffer full")
)

// Conn is a websocket peer channel with a single write goroutine. Frames
// sent before the connection is established are queued.
type Conn struct {
	mu     sync.Mutex
	conn   *ws.Conn
	sendCh chan []byte
	done   chan struct{} // closed on shutdown
	closed bool

	deliverMu sync.Mutex
	handler   func([]byte)
	pending   [][]byte // frames read before a handler was installed

	opened   chan struct{}
	openOnce sync.Once
	lost     chan struct{}
	lostOnce sync.Once

	logger zerolog.Logger
}

func newConn(logger zerolog.Logger) *Conn {
	return &Conn{
		sendCh: make(chan []byte, sendChSize),
		done:   make(chan struct{}),
		opened: make(chan struct{}),
		lost:   make(chan struct{}),
		logger: logger,
	}
}

// Dial connects to a host in the background, retrying with exponential
// backoff until it succeeds, ctx ends or the Conn is closed.
func Dial(ctx context.Context, url string, logger zerolog.Logger) *Conn {
	c := newConn(logger.With().Str("component", "transport").Str("peer", url).Logger())
	go c.dialLoop(ctx, url)
	return c
}

func (c *Conn) dialLoop(ctx context.Context, url string) {
	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		conn, _, err := ws.DefaultDialer.DialContext(ctx, url, nil)
		if err == nil {
			c.logger.Info().Int("attempt", attempt).Msg("connected to host")
			c.attach(conn)
			return
		}
		c.logger.Debug().Err(err).Int("attempt", attempt).Dur("backoff", backoff).Msg("dial failed")

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-c.done:
			timer.Stop()
			return
		case <-timer.C:
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// attach adopts an established connection and starts the read/write loops.
func (c *Conn) attach(conn *ws.Conn) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close()
		return
	}
	c.conn = conn
	c.mu.Unlock()

	go c.writeLoop()
	go c.readLoop()
	c.openOnce.Do(func() { close(c.opened) })
}

// writeLoop drains sendCh and writes frames to the websocket.
func (c *Conn) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.sendCh:
			c.mu.Lock()
			conn := c.conn
			c.mu.Unlock()
			if conn == nil {
				return
			}

			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.fail(err, "set write deadline")
				return
			}
			if err := conn.WriteMessage(ws.TextMessage, data); err != nil {
				c.fail(err, "write")
				return
			}
		}
	}
}

// readLoop hands every inbound frame to the handler in arrival order.
func (c *Conn) readLoop() {
	for {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			c.fail(err, "read")
			return
		}
		c.deliver(message)
	}
}

func (c *Conn) deliver(data []byte) {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()
	if c.handler == nil {
		c.pending = append(c.pending, data)
		return
	}
	c.handler(data)
}

// fail reports a broken connection once. Reconnecting is left to the caller.
func (c *Conn) fail(err error, op string) {
	select {
	case <-c.done:
		return
	default:
	}
	c.lostOnce.Do(func() {
		c.logger.Warn().Err(err).Str("op", op).Msg("peer connection lost")
		close(c.lost)
	})
}

// Send queues data for the write loop. It never blocks.
func (c *Conn) Send(data []byte) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}
	select {
	case c.sendCh <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// OnMessage installs the receive handler. Frames that arrived earlier are
// replayed to it first.
func (c *Conn) OnMessage(h func([]byte)) {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()
	c.handler = h
	for _, p := range c.pending {
		h(p)
	}
	c.pending = nil
}

// Opened is closed once the websocket is established.
func (c *Conn) Opened() <-chan struct{} { return c.opened }

// Lost is closed when an established connection breaks.
func (c *Conn) Lost() <-chan struct{} { return c.lost }

// Close sends a close frame and shuts down all goroutines.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.WriteMessage(
			ws.CloseMessage,
			ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
		)
		return conn.Close()
	}
	return nil
}

// Listener accepts exactly one guest and is then the host's channel to it.
type Listener struct {
	*Conn
	ln       net.Listener
	srv      *http.Server
	upgrader ws.Upgrader
	claimed  atomic.Bool
}

// Listen starts serving the peer endpoint on addr. Use ":0" for a random
// port.
func Listen(addr string, logger zerolog.Logger) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	l := &Listener{
		Conn:     newConn(logger.With().Str("component", "transport").Str("listen", ln.Addr().String()).Logger()),
		ln:       ln,
		upgrader: ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
	mux := http.NewServeMux()
	mux.HandleFunc(Path, l.accept)
	l.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := l.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.logger.Error().Err(err).Msg("peer listener stopped")
		}
	}()
	l.logger.Info().Msg("waiting for guest")
	return l, nil
}

func (l *Listener) accept(w http.ResponseWriter, r *http.Request) {
	if !l.claimed.CompareAndSwap(false, true) {
		http.Error(w, "match already has a guest", http.StatusConflict)
		return
	}
	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.claimed.Store(false)
		l.logger.Warn().Err(err).Msg("upgrade failed")
		return
	}
	l.logger.Info().Str("remote", r.RemoteAddr).Msg("guest connected")
	l.attach(conn)
}

// Addr returns the bound listen address.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// URL returns the websocket URL a guest on host should dial.
func (l *Listener) URL(host string) string {
	_, port, _ := net.SplitHostPort(l.ln.Addr().String())
	return fmt.Sprintf("ws://%s%s", net.JoinHostPort(host, port), Path)
}

// Close closes the guest connection and stops the HTTP server.
func (l *Listener) Close() error {
	err := l.Conn.Close()
	if serr := l.srv.Close(); err == nil {
		err = serr
	}
	return err
}
