package peer

import "sync"

// frame is one queued inbound event: either a raw wire frame or the local
// channel-open signal.
type frame struct {
	data   []byte
	opened bool
}

// Inbox is a thread-safe FIFO of inbound frames. Any goroutine may push;
// exactly one consumer drains it.
type Inbox struct {
	mu    sync.Mutex
	items []frame
}

// NewInbox creates an empty inbox.
func NewInbox() *Inbox {
	return &Inbox{items: make([]frame, 0)}
}

// Push appends a frame.
func (q *Inbox) Push(f frame) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, f)
}

// Len returns the number of queued frames.
func (q *Inbox) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// GetAndEmpty returns all queued frames in arrival order and clears the inbox.
func (q *Inbox) GetAndEmpty() []frame {
	q.mu.Lock()
	defer q.mu.Unlock()
	result := q.items
	q.items = make([]frame, 0, cap(q.items))
	return result
}
