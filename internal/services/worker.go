package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kubev2v/taskbatch/internal/models"
	srvErrors "github.com/kubev2v/taskbatch/pkg/errors"
	"github.com/kubev2v/taskbatch/pkg/mpsc"
	"github.com/kubev2v/taskbatch/pkg/scheduler"
)

// taskWork builds the work run by a pool worker for one task. The work owns tx:
// it sends at most one result on it and always closes it. status is advanced to
// processing when the work starts and to sent once the result is on the channel.
func taskWork(p Processor, task models.Task, status *models.TaskStatus, tx *mpsc.Sender[models.Result]) scheduler.Work[models.Result] {
	return func(ctx context.Context, workerID int) (models.Result, error) {
		defer tx.Close()

		worker := models.Worker{ID: workerID}
		log := zap.S().Named("worker").With("worker", worker.Name(), "task_id", task.ID)

		advance(log, status, models.TaskStateProcessing)

		if err := ctx.Err(); err != nil {
			log.Debugw("task cancelled before start", "error", err)
			return models.Result{}, srvErrors.NewTaskFaultError(task.ID, workerID, err)
		}

		start := time.Now()
		payload, err := p.Process(ctx, worker, task)
		if err != nil {
			log.Debugw("task failed", "error", err)
			return models.Result{}, srvErrors.NewTaskFaultError(task.ID, workerID, err)
		}

		result := models.Result{
			TaskID:   task.ID,
			WorkerID: workerID,
			Payload:  payload,
			Elapsed:  time.Since(start),
		}

		// the collector may have stopped reading; the send is still valid
		if err := tx.Send(result); err != nil {
			return result, srvErrors.NewTaskFaultError(task.ID, workerID, err)
		}
		advance(log, status, models.TaskStateSent)

		log.Debugw("result sent", "elapsed", result.Elapsed)
		return result, nil
	}
}

func advance(log *zap.SugaredLogger, status *models.TaskStatus, next models.TaskState) {
	if status == nil {
		return
	}
	if err := status.Advance(next); err != nil {
		log.Warnw("unexpected task state change", "error", err)
	}
}
