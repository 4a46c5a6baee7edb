package scheduler_test

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/taskbatch/pkg/scheduler"
)

var _ = Describe("Scheduler", func() {
	var s *scheduler.Scheduler[any]

	AfterEach(func() {
		if s != nil {
			s.Close()
		}
	})

	Describe("AddWork", func() {
		It("should add work and return a future", func() {
			s = scheduler.NewScheduler[any](1)

			work := func(ctx context.Context, workerID int) (any, error) {
				return "done", nil
			}

			future := s.AddWork(work)
			Expect(future).NotTo(BeNil())

			var result scheduler.Result[any]
			Eventually(future.C(), 2*time.Second).Should(Receive(&result))
			Expect(result.Data).To(Equal("done"))
			Expect(result.WorkerID).To(Equal(0))
		})
	})

	Describe("Run work", func() {
		It("should execute multiple work items", func() {
			s = scheduler.NewScheduler[any](2)

			results := make(chan int, 3)
			for i := range 3 {
				idx := i
				work := func(ctx context.Context, workerID int) (any, error) {
					results <- idx
					return idx, nil
				}
				s.AddWork(work)
			}

			Eventually(func() int {
				return len(results)
			}, 2*time.Second, 100*time.Millisecond).Should(Equal(3))
		})

		It("should never run more work than workers", func() {
			s = scheduler.NewScheduler[any](3)

			var current, peak int64
			futures := make([]*scheduler.Future[scheduler.Result[any]], 0, 12)
			for range 12 {
				futures = append(futures, s.AddWork(func(ctx context.Context, workerID int) (any, error) {
					c := atomic.AddInt64(&current, 1)
					for {
						p := atomic.LoadInt64(&peak)
						if c <= p || atomic.CompareAndSwapInt64(&peak, p, c) {
							break
						}
					}
					time.Sleep(20 * time.Millisecond)
					atomic.AddInt64(&current, -1)
					return workerID, nil
				}))
			}

			for _, f := range futures {
				var result scheduler.Result[any]
				Eventually(f.C(), 2*time.Second).Should(Receive(&result))
				Expect(result.Err).NotTo(HaveOccurred())
				Expect(result.WorkerID).To(BeNumerically(">=", 0))
				Expect(result.WorkerID).To(BeNumerically("<", 3))
			}
			Expect(atomic.LoadInt64(&peak)).To(BeNumerically("<=", 3))
		})

		It("should clamp the pool to at least one worker", func() {
			s = scheduler.NewScheduler[any](0)
			Expect(s.Size()).To(Equal(1))

			future := s.AddWork(func(ctx context.Context, workerID int) (any, error) {
				return "ok", nil
			})
			Eventually(future.C(), time.Second).Should(Receive())
		})
	})

	Describe("Panic recovery", func() {
		It("should report a panic as an error and keep the worker", func() {
			s = scheduler.NewScheduler[any](1)

			panicking := s.AddWork(func(ctx context.Context, workerID int) (any, error) {
				panic("boom")
			})

			var result scheduler.Result[any]
			Eventually(panicking.C(), time.Second).Should(Receive(&result))
			Expect(result.Err).To(MatchError(scheduler.ErrWorkerPanic))
			Expect(result.Err.Error()).To(ContainSubstring("boom"))

			next := s.AddWork(func(ctx context.Context, workerID int) (any, error) {
				return "after", nil
			})
			Eventually(next.C(), time.Second).Should(Receive(&result))
			Expect(result.Data).To(Equal("after"))
		})
	})

	Describe("Cancel work", func() {
		It("should cancel work via future.Stop()", func() {
			s = scheduler.NewScheduler[any](1)

			cancelled := make(chan bool, 1)
			work := func(ctx context.Context, workerID int) (any, error) {
				select {
				case <-ctx.Done():
					cancelled <- true
					return nil, ctx.Err()
				case <-time.After(5 * time.Second):
					return "completed", nil
				}
			}

			future := s.AddWork(work)
			time.Sleep(100 * time.Millisecond)
			future.Stop()

			Eventually(cancelled, 2*time.Second).Should(Receive(BeTrue()))
		})

		It("should cancel work when scheduler is closed", func() {
			s = scheduler.NewScheduler[any](1)

			cancelled := make(chan bool, 1)
			work := func(ctx context.Context, workerID int) (any, error) {
				select {
				case <-ctx.Done():
					cancelled <- true
					return nil, ctx.Err()
				case <-time.After(5 * time.Second):
					return "completed", nil
				}
			}

			s.AddWork(work)
			time.Sleep(100 * time.Millisecond)
			s.Close()
			s = nil // prevent AfterEach from closing again

			Eventually(cancelled, 2*time.Second).Should(Receive(BeTrue()))
		})

		It("should cancel work when the parent context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			s = scheduler.NewSchedulerWithContext[any](ctx, 2)

			future := s.AddWork(func(ctx context.Context, workerID int) (any, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			})
			cancel()

			var result scheduler.Result[any]
			Eventually(future.C(), time.Second).Should(Receive(&result))
			Expect(result.Err).To(MatchError(context.Canceled))
		})
	})

	Describe("Goroutine cleanup", func() {
		It("should not leak goroutines after Close under load", func() {
			base := runtime.NumGoroutine()
			s = scheduler.NewScheduler[any](4)

			work := func(ctx context.Context, workerID int) (any, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			}

			for i := 0; i < 200; i++ {
				s.AddWork(work)
			}

			time.Sleep(100 * time.Millisecond)
			s.Close()
			s = nil // prevent AfterEach from closing again

			Eventually(func() int {
				return runtime.NumGoroutine()
			}, 5*time.Second, 100*time.Millisecond).Should(BeNumerically("<=", base+10))
		})
	})

	Describe("Close behavior", func() {
		It("should return canceled when AddWork is called after Close", func() {
			s = scheduler.NewScheduler[any](1)
			s.Close()

			future := s.AddWork(func(ctx context.Context, workerID int) (any, error) {
				return "done", nil
			})

			var result scheduler.Result[any]
			Eventually(future.C(), 1*time.Second).Should(Receive(&result))
			Expect(result.Err).To(MatchError(context.Canceled))
			Expect(result.WorkerID).To(Equal(scheduler.NoWorker))
		})

		It("should wait for in-flight work to finish on Close", func() {
			s = scheduler.NewScheduler[any](1)

			started := make(chan struct{})
			unblock := make(chan struct{})
			work := func(ctx context.Context, workerID int) (any, error) {
				close(started)
				<-unblock
				return "done", nil
			}

			s.AddWork(work)
			Eventually(started, 1*time.Second).Should(BeClosed())

			closeDone := make(chan struct{})
			go func() {
				s.Close()
				close(closeDone)
			}()

			Consistently(closeDone, 200*time.Millisecond).ShouldNot(BeClosed())
			close(unblock)
			Eventually(closeDone, 1*time.Second).Should(BeClosed())
			s = nil // prevent AfterEach from closing again
		})

		It("should resolve queued work with canceled on Close", func() {
			s = scheduler.NewScheduler[any](1)

			unblock := make(chan struct{})
			s.AddWork(func(ctx context.Context, workerID int) (any, error) {
				<-unblock
				return "first", nil
			})
			queued := s.AddWork(func(ctx context.Context, workerID int) (any, error) {
				return "never", nil
			})

			closeDone := make(chan struct{})
			go func() {
				s.Close()
				close(closeDone)
			}()
			close(unblock)
			Eventually(closeDone, time.Second).Should(BeClosed())
			s = nil

			var result scheduler.Result[any]
			Eventually(queued.C(), time.Second).Should(Receive(&result))
			if result.Err != nil {
				Expect(result.Err).To(MatchError(context.Canceled))
			}
		})
	})
})
