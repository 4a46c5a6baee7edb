package mpsc

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrClosed is returned by the Receiver once every Sender is closed and the buffer is empty.
	ErrClosed = errors.New("mpsc: channel closed")
	// ErrEmpty is returned by TryRecv when no value is buffered but Senders remain open.
	ErrEmpty = errors.New("mpsc: channel empty")
	// ErrSenderClosed is returned when a closed Sender handle is used.
	ErrSenderClosed = errors.New("mpsc: sender closed")
)

type state[T any] struct {
	mu      sync.Mutex
	buf     []T
	senders int
	ready   chan struct{}
}

// notify must be called with mu held.
func (s *state[T]) notify() {
	select {
	case s.ready <- struct{}{}:
	default:
	}
}

// Sender is one producer handle. A Sender must not be shared between producers:
// Clone it instead.
type Sender[T any] struct {
	s      *state[T]
	closed bool
}

// Receiver is the single consumer handle.
type Receiver[T any] struct {
	s *state[T]
}

// New creates a channel and returns its first Sender and its Receiver.
func New[T any]() (*Sender[T], *Receiver[T]) {
	s := &state[T]{
		senders: 1,
		ready:   make(chan struct{}, 1),
	}
	return &Sender[T]{s: s}, &Receiver[T]{s: s}
}

// Clone returns a new independent handle on the same channel.
func (h *Sender[T]) Clone() (*Sender[T], error) {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()

	if h.closed {
		return nil, ErrSenderClosed
	}
	h.s.senders++
	return &Sender[T]{s: h.s}, nil
}

// Send buffers v for the consumer. It never blocks.
func (h *Sender[T]) Send(v T) error {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()

	if h.closed {
		return ErrSenderClosed
	}
	h.s.buf = append(h.s.buf, v)
	h.s.notify()
	return nil
}

// Close releases the handle. It is safe to call more than once.
func (h *Sender[T]) Close() {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	h.s.senders--
	if h.s.senders == 0 {
		h.s.notify()
	}
}

// TryRecv returns the next buffered value without blocking.
func (r *Receiver[T]) TryRecv() (T, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var zero T
	if len(r.s.buf) > 0 {
		v := r.s.buf[0]
		r.s.buf[0] = zero
		r.s.buf = r.s.buf[1:]
		return v, nil
	}
	if r.s.senders == 0 {
		return zero, ErrClosed
	}
	return zero, ErrEmpty
}

// Recv blocks until a value arrives, the channel is closed or ctx is done.
func (r *Receiver[T]) Recv(ctx context.Context) (T, error) {
	for {
		v, err := r.TryRecv()
		if !errors.Is(err, ErrEmpty) {
			return v, err
		}

		select {
		case <-r.s.ready:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// Ready is signalled whenever a value arrives or the last Sender closes.
func (r *Receiver[T]) Ready() <-chan struct{} {
	return r.s.ready
}

// Len returns the number of buffered values.
func (r *Receiver[T]) Len() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.buf)
}
