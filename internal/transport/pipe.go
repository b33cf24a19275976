package transport

import (
	"sync"
	"time"
)

const pipeBufferSize = 4096

type delivery struct {
	data []byte
	at   time.Time
}

// PipeEnd is one side of an in-memory channel pair. Frames arrive in send
// order after the configured latency.
type PipeEnd struct {
	peer    *PipeEnd
	latency time.Duration

	mu      sync.Mutex
	handler func([]byte)
	queue   chan delivery
	opened  chan struct{}

	done      chan struct{}
	closeOnce sync.Once
	startOnce sync.Once
}

// Pipe returns two connected, already open ends. Every frame is held back
// by latency before it is handed to the receiving handler.
func Pipe(latency time.Duration) (*PipeEnd, *PipeEnd) {
	a := newPipeEnd(latency)
	b := newPipeEnd(latency)
	a.peer, b.peer = b, a
	close(a.opened)
	close(b.opened)
	return a, b
}

func newPipeEnd(latency time.Duration) *PipeEnd {
	return &PipeEnd{
		latency: latency,
		queue:   make(chan delivery, pipeBufferSize),
		opened:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Send queues a copy of data for the other end.
func (e *PipeEnd) Send(data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	select {
	case <-e.done:
		return ErrClosed
	case <-e.peer.done:
		return ErrClosed
	case e.peer.queue <- delivery{data: cp, at: time.Now().Add(e.latency)}:
		return nil
	}
}

// OnMessage installs the receive handler and starts delivery.
func (e *PipeEnd) OnMessage(h func([]byte)) {
	e.mu.Lock()
	e.handler = h
	e.mu.Unlock()
	e.startOnce.Do(func() { go e.deliverLoop() })
}

// Opened is closed from the start.
func (e *PipeEnd) Opened() <-chan struct{} { return e.opened }

// Close stops delivery on this end and fails further sends in both
// directions.
func (e *PipeEnd) Close() error {
	e.closeOnce.Do(func() { close(e.done) })
	return nil
}

func (e *PipeEnd) deliverLoop() {
	for {
		select {
		case <-e.done:
			return
		case d := <-e.queue:
			if wait := time.Until(d.at); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-e.done:
					timer.Stop()
					return
				case <-timer.C:
				}
			}
			e.mu.Lock()
			h := e.handler
			e.mu.Unlock()
			h(d.data)
		}
	}
}
