package models

import (
	"time"

	"github.com/kubev2v/taskbatch/internal/util"
)

// BatchRecord is the exported summary row of a finished batch.
type BatchRecord struct {
	ID         string
	Policy     PolicyKind
	StopReason StopReason
	NumTasks   int
	NumWorkers int
	StartedAt  time.Time
	FinishedAt time.Time
}

// TaskRecord is the exported row of one task of a batch.
type TaskRecord struct {
	BatchID string
	TaskID  int
	Class   Classification
	State   TaskState
	// WorkerID, Payload and ElapsedMS are only set for received tasks.
	WorkerID  *int
	Payload   *string
	ElapsedMS *float64
	Error     *string
	Arrival   int
}

// NewBatchRecord summarizes report.
func NewBatchRecord(report *BatchReport) BatchRecord {
	return BatchRecord{
		ID:         report.ID.String(),
		Policy:     report.Policy,
		StopReason: report.Collected.Reason,
		NumTasks:   report.NumTasks,
		NumWorkers: report.NumWorkers,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
	}
}

// NewTaskRecords flattens the task reports of report, in task id order.
func NewTaskRecords(report *BatchReport) []TaskRecord {
	id := report.ID.String()
	records := make([]TaskRecord, 0, len(report.Tasks))
	for _, t := range report.Tasks {
		rec := TaskRecord{
			BatchID: id,
			TaskID:  t.TaskID,
			Class:   t.Class,
			State:   t.State,
			Arrival: t.Arrival,
		}
		if t.Result != nil {
			payload := t.Result.Payload
			elapsed := util.DurationToMS(t.Result.Elapsed)
			rec.WorkerID = util.IntPtr(t.Result.WorkerID)
			rec.Payload, rec.ElapsedMS = &payload, &elapsed
		}
		if t.Err != nil {
			msg := t.Err.Error()
			rec.Error = &msg
		}
		records = append(records, rec)
	}
	return records
}
