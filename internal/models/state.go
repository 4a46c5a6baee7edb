package models

import "fmt"

// TaskState is the lifecycle state of a task within a batch.
//
//	created → dispatched → processing → sent → received
//	              │             │          └──→ timed_out
//	              │             ├─────────────→ timed_out
//	              │             └─────────────→ faulted
//	              └───────────────────────────→ timed_out
type TaskState string

const (
	// TaskStateCreated - task built by the task set
	TaskStateCreated TaskState = "created"
	// TaskStateDispatched - task queued on the worker pool
	TaskStateDispatched TaskState = "dispatched"
	// TaskStateProcessing - a worker is running the task
	TaskStateProcessing TaskState = "processing"
	// TaskStateSent - result sent, not observed by the collector yet
	TaskStateSent TaskState = "sent"
	// TaskStateReceived - result observed by the collector
	TaskStateReceived TaskState = "received"
	// TaskStateTimedOut - collection stopped before the result was observed
	TaskStateTimedOut TaskState = "timed_out"
	// TaskStateFaulted - the worker terminated without sending
	TaskStateFaulted TaskState = "faulted"
)

var taskTransitions = map[TaskState][]TaskState{
	TaskStateCreated: {TaskStateDispatched},
	// queued work dropped when the batch stops never runs
	TaskStateDispatched: {TaskStateProcessing, TaskStateTimedOut},
	TaskStateProcessing: {TaskStateSent, TaskStateTimedOut, TaskStateFaulted},
	// a result sent after the collector stopped reading is never observed
	TaskStateSent: {TaskStateReceived, TaskStateTimedOut},
}

func (s TaskState) Value() string {
	return string(s)
}

func (s TaskState) Terminal() bool {
	switch s {
	case TaskStateReceived, TaskStateTimedOut, TaskStateFaulted:
		return true
	default:
		return false
	}
}

// CanTransition reports whether a task may move from s to next.
func (s TaskState) CanTransition(next TaskState) bool {
	for _, t := range taskTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// TaskStatus follows one task through a batch. It is owned by a single
// goroutine at a time: the batch until the task is queued, the worker while it
// runs, and the batch again once the task's future has resolved.
type TaskStatus struct {
	TaskID int
	state  TaskState
}

func NewTaskStatus(taskID int) *TaskStatus {
	return &TaskStatus{TaskID: taskID, state: TaskStateCreated}
}

func (s *TaskStatus) State() TaskState {
	return s.state
}

// Advance moves the task to next. A move the state machine does not allow is
// rejected and leaves the state unchanged.
func (s *TaskStatus) Advance(next TaskState) error {
	if !s.state.CanTransition(next) {
		return fmt.Errorf("task %d cannot move from %s to %s", s.TaskID, s.state, next)
	}
	s.state = next
	return nil
}
