package models

import "fmt"

// Task is an immutable unit of work. It is created once before dispatch and
// only ever read by the worker it is assigned to.
type Task struct {
	ID      int
	Payload string
}

func NewTask(id int, payload string) Task {
	return Task{ID: id, Payload: payload}
}

// GenerateTasks returns n tasks with ids 0..n-1 and a payload derived from the id.
func GenerateTasks(n int) []Task {
	if n <= 0 {
		return []Task{}
	}
	tasks := make([]Task, 0, n)
	for id := range n {
		tasks = append(tasks, NewTask(id, fmt.Sprintf("Task-%d payload", id)))
	}
	return tasks
}

// TaskIDs returns the ids of tasks in order.
func TaskIDs(tasks []Task) []int {
	ids := make([]int, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

// Worker is the identity of a pool slot.
type Worker struct {
	ID int
}

func (w Worker) Name() string {
	return fmt.Sprintf("Worker-%d", w.ID)
}
