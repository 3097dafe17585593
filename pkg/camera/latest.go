package camera

import (
	"sync"
	"sync/atomic"
)

// Latest is a single-slot frame buffer. Writers publish, readers get the
// newest frame; nothing is queued. Backends embed it to implement Read.
type Latest struct {
	frame    atomic.Pointer[Frame]
	sequence atomic.Uint64

	readyOnce sync.Once
	ready     chan struct{}
	closed    atomic.Bool
}

// NewLatest creates an empty buffer.
func NewLatest() *Latest {
	return &Latest{ready: make(chan struct{})}
}

// Publish stores a new frame built from f, assigning the next sequence number.
func (l *Latest) Publish(f Frame) {
	f.Sequence = l.sequence.Add(1)
	l.frame.Store(&f)
	l.readyOnce.Do(func() { close(l.ready) })
}

// Ready is closed once the first frame has been published.
func (l *Latest) Ready() <-chan struct{} {
	return l.ready
}

// Read returns the newest frame.
func (l *Latest) Read() (Frame, error) {
	if l.closed.Load() {
		return Frame{}, ErrStreamClosed
	}
	f := l.frame.Load()
	if f == nil {
		return Frame{}, ErrDeviceUnavailable
	}
	return *f, nil
}

// Close marks the buffer closed; subsequent reads fail.
func (l *Latest) Close() {
	l.closed.Store(true)
}

// Closed reports whether Close has been called.
func (l *Latest) Closed() bool {
	return l.closed.Load()
}
