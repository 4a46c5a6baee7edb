// Package services implements the batch: fan-out of tasks to a bounded worker
// pool, fan-in of their results over a many-producer single-consumer channel,
// and reconciliation of what came back.
//
// # Architecture Overview
//
//	         ┌────────────┐
//	Tasks ──►│   Batch    │
//	         └─────┬──────┘
//	               │ AddWork (one cloned Sender per task)
//	               ▼
//	     ┌───────────────────┐         ┌──────────────┐
//	     │ scheduler (M)     │──Send──►│ mpsc channel │
//	     │ Worker-0..M-1     │         └──────┬───────┘
//	     └─────────┬─────────┘                │ Recv / TryRecv
//	               │ futures                  ▼
//	               ▼                   ┌──────────────┐
//	          ┌────────┐               │    Policy    │
//	          │ Joiner │               └──────┬───────┘
//	          └───┬────┘                      │ Collected
//	              │ faults                    ▼
//	              └─────────────────►┌────────────────────┐
//	                                 │ Reconcile/Classify │
//	                                 └────────────────────┘
//
// # Batch
//
// A batch runs in five steps:
//  1. Every task gets its own clone of the result Sender and is queued on the pool.
//  2. The batch closes its own Sender so that the channel closes as soon as every
//     worker is done.
//  3. The Policy collects results in the calling goroutine.
//  4. The batch context is cancelled. Queued work is dropped and running work
//     stops at its next cancellation check. Results sent from now on are ignored.
//  5. The Joiner waits for every future, the pool is closed and the outcome is
//     reconciled against the expected task ids.
//
// A batch never fails because of its tasks. Duplicate task ids are the only
// input rejected (InvalidBatchError).
//
// # Policies
//
//	┌─────────────┬──────────────────────────────┬──────────────────────────────┐
//	│ Policy      │ Receives with                │ Stops on                     │
//	├─────────────┼──────────────────────────────┼──────────────────────────────┤
//	│ Exhaustive  │ blocking Recv                │ count reached, channel closed│
//	│ Deadline    │ TryRecv + backoff or Ready() │ deadline elapsed, closed     │
//	│ UntilClosed │ blocking Recv, OnResult      │ channel closed               │
//	└─────────────┴──────────────────────────────┴──────────────────────────────┘
//
// Every policy also stops when its context is cancelled.
//
// The Deadline policy polls without blocking. Between empty polls it waits for
// the next backoff interval, never longer than PollInterval and never past the
// deadline, so it overruns the deadline by at most one interval plus one TryRecv.
// With Notify set it waits on the channel's Ready signal instead.
//
// # Classification
//
//	received    result present in the collected set
//	faulted     missing, with a recorded fault that is not a cancellation
//	timed_out   missing under Deadline, or missing after its work was cancelled
//	unexpected  missing under a blocking policy with no fault recorded
//
// # Task states
//
// Every task carries a models.TaskStatus. The batch marks it dispatched when
// the work is queued, the worker marks it processing and then sent. Once the
// batch is classified each status moves to the terminal state of its
// classification, checked against the state machine, and the state lands in
// the TaskReport. A task whose result was sent after collection stopped is
// timed out under every policy.
//
// Usage:
//
//	processor := services.NewSimulatedProcessor(10*time.Millisecond, 50*time.Millisecond, 10*time.Millisecond, 0)
//	policy := services.NewDeadline(time.Second, services.DefaultPollInterval)
//	report, err := services.NewBatch(processor, policy, 4).Run(ctx, 10)
package services
