package services

import (
	"cmp"
	"slices"

	"github.com/kubev2v/taskbatch/internal/models"
	srvErrors "github.com/kubev2v/taskbatch/pkg/errors"
)

// Reconcile partitions expected into the ids present in collected and the rest.
// Ids in collected that are not expected are ignored. It is a pure function.
func Reconcile(expected []int, collected []models.Result) models.Outcome {
	seen := make(map[int]struct{}, len(collected))
	for _, r := range collected {
		seen[r.TaskID] = struct{}{}
	}

	out := models.Outcome{
		Received: []int{},
		Missing:  []int{},
	}
	done := make(map[int]struct{}, len(expected))
	for _, id := range expected {
		if _, dup := done[id]; dup {
			continue
		}
		done[id] = struct{}{}

		if _, ok := seen[id]; ok {
			out.Received = append(out.Received, id)
		} else {
			out.Missing = append(out.Missing, id)
		}
	}

	slices.Sort(out.Received)
	slices.Sort(out.Missing)
	return out
}

// Classify gives every expected task exactly one classification.
//
//   - received: its result is in the collected set
//   - faulted: missing, with a fault other than a cancellation
//   - timed_out: missing under the deadline policy, or cancelled
//   - unexpected: missing under a blocking policy with no recorded fault
func Classify(outcome models.Outcome, collected []models.Result, faults map[int]error, policy models.PolicyKind) []models.TaskReport {
	arrival := make(map[int]int, len(collected))
	for i, r := range collected {
		if _, ok := arrival[r.TaskID]; !ok {
			arrival[r.TaskID] = i
		}
	}

	reports := make([]models.TaskReport, 0, outcome.Total())
	for _, id := range outcome.Received {
		r := collected[arrival[id]]
		reports = append(reports, models.TaskReport{
			TaskID:  id,
			Class:   models.ClassReceived,
			State:   models.TaskStateReceived,
			Result:  &r,
			Err:     faults[id],
			Arrival: arrival[id],
		})
	}

	for _, id := range outcome.Missing {
		err := faults[id]
		report := models.TaskReport{TaskID: id, Err: err, Arrival: -1}
		switch {
		case err != nil && !srvErrors.IsCancellation(err):
			report.Class = models.ClassFaulted
		case policy == models.PolicyDeadline || err != nil:
			report.Class = models.ClassTimedOut
		default:
			report.Class = models.ClassUnexpected
		}
		report.State = report.Class.State()
		reports = append(reports, report)
	}

	slices.SortFunc(reports, func(a, b models.TaskReport) int {
		return cmp.Compare(a.TaskID, b.TaskID)
	})
	return reports
}
