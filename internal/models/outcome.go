package models

import (
	"time"

	"github.com/google/uuid"
)

// Outcome partitions the expected task ids into received and missing.
// Both slices are sorted ascending.
type Outcome struct {
	Received []int
	Missing  []int
}

func (o Outcome) Total() int {
	return len(o.Received) + len(o.Missing)
}

type Classification string

const (
	ClassReceived   Classification = "received"
	ClassTimedOut   Classification = "timed_out"
	ClassFaulted    Classification = "faulted"
	ClassUnexpected Classification = "unexpected"
)

func (c Classification) Value() string {
	return string(c)
}

// State maps a classification to the terminal task state it represents.
func (c Classification) State() TaskState {
	switch c {
	case ClassReceived:
		return TaskStateReceived
	case ClassTimedOut:
		return TaskStateTimedOut
	default:
		// an unexpected miss is a worker that closed without sending
		return TaskStateFaulted
	}
}

type PolicyKind string

const (
	PolicyExhaustive  PolicyKind = "exhaustive"
	PolicyDeadline    PolicyKind = "deadline"
	PolicyUntilClosed PolicyKind = "stream"
)

func ParsePolicyKind(s string) (PolicyKind, bool) {
	switch PolicyKind(s) {
	case PolicyExhaustive, PolicyDeadline, PolicyUntilClosed:
		return PolicyKind(s), true
	default:
		return "", false
	}
}

// TaskReport is the single classification of one task.
type TaskReport struct {
	TaskID int
	Class  Classification
	// State is the terminal lifecycle state of the task.
	State TaskState
	// Result is set only for received tasks.
	Result *Result
	// Err is the recorded fault, if any.
	Err error
	// Arrival is the position of the result in the collected set, -1 if not received.
	Arrival int
}

// BatchReport is everything known about a batch once it is reconciled.
type BatchReport struct {
	ID         uuid.UUID
	Policy     PolicyKind
	NumTasks   int
	NumWorkers int
	Collected  Collected
	Outcome    Outcome
	Tasks      []TaskReport
	Faults     map[int]error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Count returns the number of tasks classified as c.
func (r *BatchReport) Count(c Classification) int {
	n := 0
	for _, t := range r.Tasks {
		if t.Class == c {
			n++
		}
	}
	return n
}

// ByClass returns the reports classified as c, in task id order.
func (r *BatchReport) ByClass(c Classification) []TaskReport {
	var out []TaskReport
	for _, t := range r.Tasks {
		if t.Class == c {
			out = append(out, t)
		}
	}
	return out
}
