package report

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/kubev2v/taskbatch/internal/models"
	"github.com/kubev2v/taskbatch/internal/util"
)

// TextReporter writes the human readable batch report.
type TextReporter struct {
	w          io.Writer
	received   *color.Color
	timeout    *color.Color
	fault      *color.Color
	unexpected *color.Color
	info       *color.Color
}

func NewTextReporter(w io.Writer, noColor bool) *TextReporter {
	r := &TextReporter{
		w:          w,
		received:   color.New(color.FgGreen),
		timeout:    color.New(color.FgYellow),
		fault:      color.New(color.FgRed),
		unexpected: color.New(color.FgMagenta, color.Bold),
		info:       color.New(color.FgCyan),
	}
	if noColor {
		for _, c := range []*color.Color{r.received, r.timeout, r.fault, r.unexpected, r.info} {
			c.DisableColor()
		}
	}
	return r
}

// Result writes the line of one received result.
func (r *TextReporter) Result(res models.Result) {
	r.received.Fprintln(r.w, res.String())
}

// Results writes one line per collected result, in arrival order.
func (r *TextReporter) Results(report *models.BatchReport) {
	for _, res := range report.Collected.Results {
		r.Result(res)
	}
}

// Missing writes one line per task that was not received, in task id order,
// preceded by an info line when the channel closed before collection was done.
func (r *TextReporter) Missing(report *models.BatchReport) {
	if closedEarly(report) {
		r.info.Fprintf(r.w, "Info: all workers finished, channel closed after %d of %d results\n",
			report.Collected.Len(), report.NumTasks)
	}

	for _, t := range report.Tasks {
		switch t.Class {
		case models.ClassTimedOut:
			r.timeout.Fprintf(r.w, "Timeout: Task-%d\n", t.TaskID)
		case models.ClassFaulted:
			r.fault.Fprintf(r.w, "Fault: Task-%d: %v\n", t.TaskID, t.Err)
		case models.ClassUnexpected:
			r.unexpected.Fprintf(r.w, "Unexpected: Task-%d\n", t.TaskID)
		}
	}
}

// Summary writes the per classification totals of the batch.
func (r *TextReporter) Summary(report *models.BatchReport) {
	received := report.Count(models.ClassReceived)
	fmt.Fprintf(r.w, "Batch %s (%s): %d/%d received (%.2f%%), %d timed out, %d faulted, %d unexpected in %s\n",
		report.ID,
		report.Policy,
		received,
		report.NumTasks,
		util.Percent(received, report.NumTasks),
		report.Count(models.ClassTimedOut),
		report.Count(models.ClassFaulted),
		report.Count(models.ClassUnexpected),
		report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond),
	)
}

// closedEarly reports whether the channel closed while the policy still
// expected results. Closing is the normal end of a stream.
func closedEarly(report *models.BatchReport) bool {
	if report.Collected.Reason != models.StopChannelClosed {
		return false
	}
	switch report.Policy {
	case models.PolicyDeadline:
		return true
	case models.PolicyExhaustive:
		return report.Collected.Len() < report.NumTasks
	default:
		return false
	}
}
