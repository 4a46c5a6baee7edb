package errors

import (
	"context"
	"errors"
	"fmt"
)

// TaskFaultError is recorded against a task whose worker terminated without sending a result.
type TaskFaultError struct {
	TaskID   int
	WorkerID int
	Err      error
}

func NewTaskFaultError(taskID, workerID int, err error) *TaskFaultError {
	return &TaskFaultError{TaskID: taskID, WorkerID: workerID, Err: err}
}

func (e *TaskFaultError) Error() string {
	return fmt.Sprintf("task %d faulted on worker %d: %v", e.TaskID, e.WorkerID, e.Err)
}

func (e *TaskFaultError) Unwrap() error {
	return e.Err
}

func IsTaskFaultError(err error) bool {
	var e *TaskFaultError
	return errors.As(err, &e)
}

// TaskID returns the task id carried by a TaskFaultError.
func TaskID(err error) (int, bool) {
	var e *TaskFaultError
	if errors.As(err, &e) {
		return e.TaskID, true
	}
	return 0, false
}

// IsCancellation reports whether err comes from a cancelled or expired context.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

type InvalidBatchError struct {
	reason string
}

func NewInvalidBatchError(format string, args ...any) *InvalidBatchError {
	return &InvalidBatchError{reason: fmt.Sprintf(format, args...)}
}

func (e *InvalidBatchError) Error() string {
	return fmt.Sprintf("invalid batch: %s", e.reason)
}

func IsInvalidBatchError(err error) bool {
	var e *InvalidBatchError
	return errors.As(err, &e)
}

type ResourceNotFoundError struct {
	kind string
	id   string
}

func NewBatchNotFoundError(id string) *ResourceNotFoundError {
	return &ResourceNotFoundError{kind: "batch", id: id}
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.kind, e.id)
}

func IsResourceNotFoundError(err error) bool {
	var e *ResourceNotFoundError
	return errors.As(err, &e)
}

type InvalidConfigurationError struct {
	field  string
	reason string
}

func NewInvalidConfigurationError(field, reason string) *InvalidConfigurationError {
	return &InvalidConfigurationError{field: field, reason: reason}
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.field, e.reason)
}

func IsInvalidConfigurationError(err error) bool {
	var e *InvalidConfigurationError
	return errors.As(err, &e)
}
