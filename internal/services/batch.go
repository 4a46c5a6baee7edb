package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kubev2v/taskbatch/internal/models"
	srvErrors "github.com/kubev2v/taskbatch/pkg/errors"
	"github.com/kubev2v/taskbatch/pkg/mpsc"
	"github.com/kubev2v/taskbatch/pkg/scheduler"
)

// Batch fans a set of tasks out to a bounded worker pool, collects their
// results with a Policy and reconciles what came back.
type Batch struct {
	processor  Processor
	policy     Policy
	numWorkers int
}

// NewBatch creates a batch runner. numWorkers <= 0 runs one worker per task.
func NewBatch(processor Processor, policy Policy, numWorkers int) *Batch {
	return &Batch{
		processor:  processor,
		policy:     policy,
		numWorkers: numWorkers,
	}
}

// Run runs a batch of n generated tasks.
func (b *Batch) Run(ctx context.Context, n int) (*models.BatchReport, error) {
	return b.RunTasks(ctx, models.GenerateTasks(n))
}

// RunTasks runs a batch over tasks. Task ids must be unique.
// Faults, timeouts and early channel closure are reported, never returned as errors.
func (b *Batch) RunTasks(ctx context.Context, tasks []models.Task) (*models.BatchReport, error) {
	if err := validateTasks(tasks); err != nil {
		return nil, err
	}

	report := &models.BatchReport{
		ID:         uuid.New(),
		Policy:     b.policy.Kind(),
		NumTasks:   len(tasks),
		NumWorkers: b.workers(len(tasks)),
		StartedAt:  time.Now(),
	}
	log := zap.S().Named("batch").With("batch_id", report.ID)

	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := scheduler.NewSchedulerWithContext[models.Result](batchCtx, report.NumWorkers)
	defer sched.Close()

	tx, rx := mpsc.New[models.Result]()

	handles := make([]TaskHandle, 0, len(tasks))
	for _, task := range tasks {
		h, err := tx.Clone()
		if err != nil {
			tx.Close()
			cancel()
			Join(handles)
			return nil, fmt.Errorf("failed to clone result sender for task %d: %w", task.ID, err)
		}
		status := models.NewTaskStatus(task.ID)
		advance(log, status, models.TaskStateDispatched)
		handles = append(handles, TaskHandle{
			TaskID: task.ID,
			Future: sched.AddWork(taskWork(b.processor, task, status, h)),
			Sender: h,
			Status: status,
		})
	}
	// drop our own handle so the channel closes once every worker is done
	tx.Close()

	log.Infow("tasks dispatched", "tasks", report.NumTasks, "workers", sched.Size(), "policy", report.Policy)

	policy := b.policy
	if d, ok := policy.(Deadline); ok {
		policy = d.WithStart(report.StartedAt)
	}
	report.Collected = policy.Collect(batchCtx, rx, len(tasks))

	// stop queued and running work; late results are ignored
	cancel()

	report.Faults = Join(handles)
	sched.Close()

	report.Outcome = Reconcile(models.TaskIDs(tasks), report.Collected.Results)
	report.Tasks = Classify(report.Outcome, report.Collected.Results, report.Faults, report.Policy)
	settle(log, report.Tasks, handles)
	report.FinishedAt = time.Now()

	log.Infow("batch finished",
		"reason", report.Collected.Reason,
		"received", len(report.Outcome.Received),
		"missing", len(report.Outcome.Missing),
		"faults", len(report.Faults),
		"duration", report.FinishedAt.Sub(report.StartedAt))

	return report, nil
}

func (b *Batch) workers(n int) int {
	if b.numWorkers <= 0 || b.numWorkers > n {
		return n
	}
	return b.numWorkers
}

// settle moves every task status to the terminal state of its classification
// and records it in the report. A task whose result was sent but never
// collected arrived too late: it is timed out whatever the policy.
func settle(log *zap.SugaredLogger, reports []models.TaskReport, handles []TaskHandle) {
	statuses := make(map[int]*models.TaskStatus, len(handles))
	for _, h := range handles {
		statuses[h.TaskID] = h.Status
	}

	for i := range reports {
		r := &reports[i]
		status := statuses[r.TaskID]
		if status == nil {
			continue
		}
		if r.Class == models.ClassUnexpected && status.State() == models.TaskStateSent {
			r.Class = models.ClassTimedOut
		}
		advance(log, status, r.Class.State())
		r.State = status.State()
	}
}

func validateTasks(tasks []models.Task) error {
	seen := make(map[int]struct{}, len(tasks))
	for _, t := range tasks {
		if _, ok := seen[t.ID]; ok {
			return srvErrors.NewInvalidBatchError("duplicate task id %d", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}
