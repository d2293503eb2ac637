package reflection

import "sync"

// ShutdownBroadcast is a process-wide termination token. Every server
// constructed with the same broadcast observes one Trigger, which is how the
// remote-termination endpoint stops all listening instances without a global
// mutable flag.
type ShutdownBroadcast struct {
	once sync.Once
	ch   chan struct{}
}

// NewShutdownBroadcast creates an untriggered broadcast token.
func NewShutdownBroadcast() *ShutdownBroadcast {
	return &ShutdownBroadcast{ch: make(chan struct{})}
}

// Trigger signals termination. Safe to call more than once.
func (b *ShutdownBroadcast) Trigger() {
	b.once.Do(func() {
		close(b.ch)
	})
}

// Done returns a channel closed once termination has been signaled.
func (b *ShutdownBroadcast) Done() <-chan struct{} {
	return b.ch
}

// Triggered reports whether termination has been signaled.
func (b *ShutdownBroadcast) Triggered() bool {
	select {
	case <-b.ch:
		return true
	default:
		return false
	}
}
