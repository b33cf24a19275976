package peer

// Channel is an ordered, reliable, bidirectional message pipe to the other
// peer. OnMessage handlers may be invoked from any goroutine.
type Channel interface {
	Send(frame []byte) error
	OnMessage(handler func(frame []byte))
	Opened() <-chan struct{}
}
