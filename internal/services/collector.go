package services

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/kubev2v/taskbatch/internal/models"
	"github.com/kubev2v/taskbatch/pkg/mpsc"
)

const DefaultPollInterval = 5 * time.Millisecond

// Policy consumes results from the receiving end of the result channel.
// A policy only gathers results; it never classifies tasks.
type Policy interface {
	Kind() models.PolicyKind
	Collect(ctx context.Context, rx *mpsc.Receiver[models.Result], expected int) models.Collected
}

// Exhaustive blocks until expected results arrive or the channel closes.
// It has no time bound.
type Exhaustive struct{}

func NewExhaustive() Exhaustive {
	return Exhaustive{}
}

func (Exhaustive) Kind() models.PolicyKind {
	return models.PolicyExhaustive
}

func (Exhaustive) Collect(ctx context.Context, rx *mpsc.Receiver[models.Result], expected int) models.Collected {
	log := zap.S().Named("collector")
	col := models.Collected{Started: time.Now(), Results: make([]models.Result, 0, max(expected, 0))}

	for len(col.Results) < expected {
		r, err := rx.Recv(ctx)
		switch {
		case err == nil:
			col.Results = append(col.Results, r)
		case errors.Is(err, mpsc.ErrClosed):
			log.Infow("channel closed before every result arrived", "received", len(col.Results), "expected", expected)
			col.Reason = models.StopChannelClosed
			return finish(col)
		default:
			col.Reason = models.StopContextCancelled
			return finish(col)
		}
	}

	col.Reason = models.StopCountReached
	return finish(col)
}

// Deadline polls the channel without blocking until the deadline passes or the
// channel closes, whichever comes first. The time spent past the deadline is
// bounded by one poll interval plus one TryRecv.
type Deadline struct {
	// At is the wall-clock deadline. When zero, Timeout is counted from the start of Collect.
	At      time.Time
	Timeout time.Duration
	// PollInterval caps every wait between empty polls.
	PollInterval time.Duration
	// BackOff paces the waits between empty polls. It is reset after every
	// received result. Defaults to a constant PollInterval.
	BackOff backoff.BackOff
	// Notify waits for arrivals on the channel instead of sleeping.
	Notify bool
}

func NewDeadline(timeout, pollInterval time.Duration) Deadline {
	return Deadline{Timeout: timeout, PollInterval: pollInterval}
}

// NewExponentialPollBackOff grows the wait between empty polls from a tenth of
// pollInterval up to pollInterval.
func NewExponentialPollBackOff(pollInterval time.Duration) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = max(pollInterval/10, time.Millisecond)
	b.MaxInterval = pollInterval
	b.Multiplier = 2
	b.RandomizationFactor = 0
	return b
}

func (Deadline) Kind() models.PolicyKind {
	return models.PolicyDeadline
}

// WithStart anchors a relative deadline at start.
func (d Deadline) WithStart(start time.Time) Deadline {
	if d.At.IsZero() {
		d.At = start.Add(d.Timeout)
	}
	return d
}

func (d Deadline) Collect(ctx context.Context, rx *mpsc.Receiver[models.Result], expected int) models.Collected {
	log := zap.S().Named("collector")
	col := models.Collected{Started: time.Now(), Results: make([]models.Result, 0, max(expected, 0))}

	deadline := d.WithStart(col.Started).At
	interval := d.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	b := d.BackOff
	if b == nil {
		b = backoff.NewConstantBackOff(interval)
	}
	b.Reset()

	var notify <-chan struct{}
	if d.Notify {
		notify = rx.Ready()
	}

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			log.Infow("deadline elapsed", "received", len(col.Results), "unread", rx.Len())
			col.Reason = models.StopDeadlineElapsed
			return finish(col)
		}

		r, err := rx.TryRecv()
		switch {
		case err == nil:
			col.Results = append(col.Results, r)
			b.Reset()
			continue
		case errors.Is(err, mpsc.ErrClosed):
			log.Infow("channel closed before the deadline", "received", len(col.Results), "remaining", remaining)
			col.Reason = models.StopChannelClosed
			return finish(col)
		}

		wait := remaining
		if !d.Notify {
			wait = min(nextPoll(b, interval), remaining)
		}
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			col.Reason = models.StopContextCancelled
			return finish(col)
		case <-notify:
			timer.Stop()
		case <-timer.C:
		}
	}
}

func nextPoll(b backoff.BackOff, interval time.Duration) time.Duration {
	next := b.NextBackOff()
	if next == backoff.Stop || next <= 0 || next > interval {
		return interval
	}
	return next
}

// UntilClosed streams results until the channel closes, handing each to OnResult
// as it arrives.
type UntilClosed struct {
	OnResult func(models.Result)
}

func NewUntilClosed(onResult func(models.Result)) UntilClosed {
	return UntilClosed{OnResult: onResult}
}

func (UntilClosed) Kind() models.PolicyKind {
	return models.PolicyUntilClosed
}

func (u UntilClosed) Collect(ctx context.Context, rx *mpsc.Receiver[models.Result], expected int) models.Collected {
	col := models.Collected{Started: time.Now(), Results: make([]models.Result, 0, max(expected, 0))}

	for {
		r, err := rx.Recv(ctx)
		switch {
		case err == nil:
			col.Results = append(col.Results, r)
			if u.OnResult != nil {
				u.OnResult(r)
			}
		case errors.Is(err, mpsc.ErrClosed):
			col.Reason = models.StopChannelClosed
			return finish(col)
		default:
			col.Reason = models.StopContextCancelled
			return finish(col)
		}
	}
}

func finish(col models.Collected) models.Collected {
	col.Finished = time.Now()
	zap.S().Named("collector").Debugw("collection finished",
		"reason", col.Reason, "received", len(col.Results), "duration", col.Duration())
	return col
}
