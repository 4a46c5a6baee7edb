package models

import (
	"fmt"
	"time"
)

// Result is produced by a worker for exactly one task.
type Result struct {
	TaskID   int
	WorkerID int
	Payload  string
	Elapsed  time.Duration
}

func (r Result) String() string {
	return fmt.Sprintf("Worker %d processed task %d with payload %s", r.WorkerID, r.TaskID, r.Payload)
}

// StopReason is the terminal condition that ended a collection.
type StopReason string

const (
	// StopCountReached - every expected result was received
	StopCountReached StopReason = "count-reached"
	// StopChannelClosed - all senders closed, no more results can arrive
	StopChannelClosed StopReason = "channel-closed"
	// StopDeadlineElapsed - the collection deadline passed
	StopDeadlineElapsed StopReason = "deadline-elapsed"
	// StopContextCancelled - the caller cancelled the collection
	StopContextCancelled StopReason = "context-cancelled"
)

func (s StopReason) Value() string {
	return string(s)
}

// Collected is the insertion-ordered set of results gathered by a collector.
type Collected struct {
	Results  []Result
	Reason   StopReason
	Started  time.Time
	Finished time.Time
}

func (c Collected) Len() int {
	return len(c.Results)
}

func (c Collected) Duration() time.Duration {
	return c.Finished.Sub(c.Started)
}
