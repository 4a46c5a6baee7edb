// Package scheduler runs work items on a fixed pool of M workers and hands
// back a Future per item.
//
// The number of submitted items is independent of the pool size: a batch of N
// tasks queues N items and at most M of them run at any time. Every worker has
// a stable id in [0, M) which is passed to the work it runs, so callers can
// tell which pool slot produced a result.
//
// # Layout
//
//	AddWork(fn) ──► work chan ──► run() ──► workQueue ──┐
//	                                 ▲                  │ dispatch()
//	                                 │ released ids     ▼
//	                          ┌──────┴──────────────────────────┐
//	                          │ Worker-0  Worker-1 ... Worker-M-1│
//	                          └──────┬──────────────────────────┘
//	                                 │ Result{Data, WorkerID, Err}
//	                                 ▼
//	                            future.C()
//
// A single goroutine (run) owns both queues, the idle workers and the pending
// requests, so neither needs a lock. It reacts to three events:
//
//	new work      push the request, then dispatch
//	worker done   return the worker id to the idle queue, then dispatch
//	close         resolve everything still queued, wait for running work, exit
//
// dispatch pairs idle workers with pending requests until one side is empty.
//
// # Futures
//
// AddWork never blocks on a free worker. It returns a Future whose channel
// (buffered, capacity 1) receives exactly one Result:
//
//   - the value and error returned by the work function, tagged with the
//     worker id that ran it;
//   - an ErrWorkerPanic-wrapping error if the work function panicked (the
//     worker survives and goes back to the pool);
//   - context.Canceled with WorkerID NoWorker if the item never ran, either
//     because the scheduler was already closing or because Close dropped it
//     from the queue.
//
// Future.Stop cancels the context of that single item.
//
// # Contexts
//
// Work contexts derive from a main context, which derives from the parent
// given to NewSchedulerWithContext. Cancelling the parent therefore reaches
// every queued and running item; this is how a batch stops its work when its
// deadline passes. Work functions are expected to watch ctx.Done().
//
// # Close
//
// Close cancels the main context, resolves queued futures with
// context.Canceled, waits for every running work function to return and only
// then returns. After Close no goroutine started by the scheduler is alive and
// every Future obtained from AddWork has a value ready. Close may be called
// more than once.
//
// Example:
//
//	sched := scheduler.NewSchedulerWithContext[string](ctx, 4)
//	defer sched.Close()
//
//	future := sched.AddWork(func(ctx context.Context, workerID int) (string, error) {
//	    select {
//	    case <-time.After(100 * time.Millisecond):
//	        return fmt.Sprintf("done by Worker-%d", workerID), nil
//	    case <-ctx.Done():
//	        return "", ctx.Err()
//	    }
//	})
//
//	res := <-future.C()
//	if res.Err != nil {
//	    zap.S().Named("scheduler").Errorw("work failed", "worker", res.WorkerID, "error", res.Err)
//	}
package scheduler
