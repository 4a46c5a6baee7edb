package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/kubev2v/taskbatch/internal/models"
)

// ErrSimulatedFault is returned by SimulatedProcessor for tasks picked by its fault rate.
var ErrSimulatedFault = errors.New("simulated work failure")

// Processor performs the opaque work of a task. It must not mutate the task
// and should return early with ctx.Err() once ctx is done.
type Processor interface {
	Process(ctx context.Context, worker models.Worker, task models.Task) (string, error)
}

type ProcessorFunc func(ctx context.Context, worker models.Worker, task models.Task) (string, error)

func (f ProcessorFunc) Process(ctx context.Context, worker models.Worker, task models.Task) (string, error) {
	return f(ctx, worker, task)
}

// SimulatedProcessor sleeps for a uniformly random duration in [MinDuration, MaxDuration)
// and returns the task payload. The sleep is split into Step increments so that
// cancellation is observed between steps.
type SimulatedProcessor struct {
	MinDuration time.Duration
	MaxDuration time.Duration
	Step        time.Duration
	FaultRate   float64
}

func NewSimulatedProcessor(minDuration, maxDuration, step time.Duration, faultRate float64) *SimulatedProcessor {
	return &SimulatedProcessor{
		MinDuration: minDuration,
		MaxDuration: maxDuration,
		Step:        step,
		FaultRate:   faultRate,
	}
}

func (p *SimulatedProcessor) Process(ctx context.Context, _ models.Worker, task models.Task) (string, error) {
	if err := Sleep(ctx, p.duration(), p.Step); err != nil {
		return "", err
	}
	if p.FaultRate > 0 && rand.Float64() < p.FaultRate {
		return "", ErrSimulatedFault
	}
	return task.Payload, nil
}

func (p *SimulatedProcessor) duration() time.Duration {
	if p.MaxDuration <= p.MinDuration {
		return p.MinDuration
	}
	return p.MinDuration + rand.N(p.MaxDuration-p.MinDuration)
}

// Sleep waits for d in step increments, returning ctx.Err() as soon as ctx is done.
// A non-positive step waits in a single increment.
func Sleep(ctx context.Context, d, step time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if step <= 0 {
		step = d
	}
	for d > 0 {
		wait := min(step, d)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		d -= wait
	}
	return nil
}
