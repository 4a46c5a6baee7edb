package scheduler

import (
	"context"
	"fmt"
	"sync"
)

type queue[T any] []T

func (wq *queue[T]) Len() int { return len(*wq) }

func (wq *queue[T]) Pop() T {
	old := *wq
	x := old[0]
	var zero T
	old[0] = zero
	*wq = old[1:]
	return x
}

func (wq *queue[T]) Push(t T) {
	*wq = append(*wq, t)
}

type workRequest[T any] struct {
	fn     Work[T]
	c      chan Result[T]
	ctx    context.Context
	cancel context.CancelFunc
}

type worker[T any] struct {
	id       int
	released chan int
	wg       *sync.WaitGroup
}

func (w worker[T]) Work(r workRequest[T]) {
	defer func() {
		if rec := recover(); rec != nil {
			r.c <- Result[T]{WorkerID: w.id, Err: fmt.Errorf("%w: %v", ErrWorkerPanic, rec)}
		}
		r.cancel()
		w.released <- w.id
		w.wg.Done()
	}()

	v, err := r.fn(r.ctx, w.id)
	r.c <- Result[T]{Data: v, WorkerID: w.id, Err: err}
}

func newWorker[T any](id int, released chan int, wg *sync.WaitGroup) worker[T] {
	return worker[T]{id: id, released: released, wg: wg}
}

// Scheduler runs submitted work on a fixed pool of workers.
type Scheduler[T any] struct {
	size       int
	workers    *queue[worker[T]]
	workQueue  *queue[workRequest[T]]
	close      chan any
	stopped    chan any
	released   chan int
	work       chan workRequest[T]
	mainCtx    context.Context
	mainCancel context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

func NewScheduler[T any](nbWorkers int) *Scheduler[T] {
	return NewSchedulerWithContext[T](context.Background(), nbWorkers)
}

// NewSchedulerWithContext creates a scheduler whose work contexts derive from parent.
// Cancelling parent cancels every queued and running work item.
func NewSchedulerWithContext[T any](parent context.Context, nbWorkers int) *Scheduler[T] {
	if nbWorkers < 1 {
		nbWorkers = 1
	}

	released := make(chan int, nbWorkers)
	ctx, cancel := context.WithCancel(parent)
	s := &Scheduler[T]{
		size:       nbWorkers,
		workers:    &queue[worker[T]]{},
		workQueue:  &queue[workRequest[T]]{},
		close:      make(chan any),
		stopped:    make(chan any),
		released:   released,
		work:       make(chan workRequest[T]),
		mainCtx:    ctx,
		mainCancel: cancel,
	}
	for id := range nbWorkers {
		s.workers.Push(newWorker[T](id, released, &s.wg))
	}
	go s.run()
	return s
}

// Size returns the number of workers in the pool.
func (s *Scheduler[T]) Size() int {
	return s.size
}

func (s *Scheduler[T]) AddWork(w Work[T]) *Future[Result[T]] {
	c := make(chan Result[T], 1)
	ctx, cancel := context.WithCancel(s.mainCtx)

	select {
	case <-s.mainCtx.Done():
		// we're closing here so send a result with an error
		cancel()
		c <- Result[T]{WorkerID: NoWorker, Err: context.Canceled}
	case s.work <- workRequest[T]{w, c, ctx, cancel}:
	}

	return NewFuture(c, cancel)
}

// Close cancels all work, resolves the futures of queued work with
// context.Canceled and waits for in-flight work to return.
func (s *Scheduler[T]) Close() {
	s.once.Do(func() {
		s.mainCancel()
		close(s.close)
		<-s.stopped
	})
}

func (s *Scheduler[T]) run() {
	defer close(s.stopped)
	for {
		select {
		case w := <-s.work:
			s.workQueue.Push(w)
			s.dispatch()
		case id := <-s.released:
			s.workers.Push(newWorker[T](id, s.released, &s.wg))
			s.dispatch()
		case <-s.close:
			for s.workQueue.Len() > 0 {
				r := s.workQueue.Pop()
				r.cancel()
				r.c <- Result[T]{WorkerID: NoWorker, Err: context.Canceled}
			}
			s.wg.Wait()
			return
		}
	}
}

// dispatch drains the workQueue as much as possible
// based on available workers
func (s *Scheduler[T]) dispatch() {
	for s.workers.Len() > 0 && s.workQueue.Len() > 0 {
		r := s.workQueue.Pop()
		worker := s.workers.Pop()
		s.wg.Add(1)
		go worker.Work(r)
	}
}
