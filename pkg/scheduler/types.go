package scheduler

import (
	"context"
	"errors"
)

// ErrWorkerPanic wraps the value recovered from a panicking work function.
var ErrWorkerPanic = errors.New("worker panicked")

// NoWorker is the WorkerID of results produced without a worker, i.e. work
// rejected or dropped before it was dispatched.
const NoWorker = -1

// Work is executed by a pool worker. workerID identifies the pool slot running it.
type Work[T any] func(ctx context.Context, workerID int) (T, error)

type Result[T any] struct {
	Data     T
	WorkerID int
	Err      error
}

type Future[T any] struct {
	input  chan T
	cancel context.CancelFunc
}

func NewFuture[T any](input chan T, cancel context.CancelFunc) *Future[T] {
	f := &Future[T]{
		input:  input,
		cancel: cancel,
	}

	return f
}

// C receives exactly one value.
func (f *Future[T]) C() <-chan T {
	return f.input
}

func (f *Future[T]) Stop() {
	f.cancel()
}
