package services

import (
	"go.uber.org/zap"

	"github.com/kubev2v/taskbatch/internal/models"
	srvErrors "github.com/kubev2v/taskbatch/pkg/errors"
	"github.com/kubev2v/taskbatch/pkg/mpsc"
	"github.com/kubev2v/taskbatch/pkg/scheduler"
)

// TaskHandle ties a dispatched task to its future, to the sender handle it owns
// and to the status its work advances.
type TaskHandle struct {
	TaskID int
	Future *scheduler.Future[scheduler.Result[models.Result]]
	Sender *mpsc.Sender[models.Result]
	Status *models.TaskStatus
}

// Join waits for every handle's work to terminate and returns the faults keyed
// by task id. It never fails: a fault is recorded against its task only.
// Each task's sender is closed once its work has terminated, so work dropped
// before it ever ran cannot keep the channel open.
func Join(handles []TaskHandle) map[int]error {
	log := zap.S().Named("joiner")
	faults := make(map[int]error)

	for _, h := range handles {
		res := <-h.Future.C()
		if h.Sender != nil {
			h.Sender.Close()
		}
		if res.Err == nil {
			continue
		}

		// errors not already attributed to this task, such as a recovered
		// panic or work dropped from the queue, are wrapped
		err := res.Err
		if id, ok := srvErrors.TaskID(err); !ok || id != h.TaskID {
			err = srvErrors.NewTaskFaultError(h.TaskID, res.WorkerID, err)
		}
		faults[h.TaskID] = err
		log.Debugw("task fault recorded", "task_id", h.TaskID, "worker", res.WorkerID, "error", err)
	}

	log.Debugw("all tasks joined", "tasks", len(handles), "faults", len(faults))
	return faults
}
