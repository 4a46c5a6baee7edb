package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/kubev2v/taskbatch/internal/models"
	"github.com/kubev2v/taskbatch/internal/util"
)

const (
	TasksSheet   = "Tasks"
	SummarySheet = "Summary"
)

var taskHeader = []any{"Task ID", "Classification", "State", "Worker", "Payload", "Elapsed (ms)", "Arrival", "Error"}

// WriteWorkbook saves the batch report as an xlsx workbook at path, with one
// row per task on the Tasks sheet and the batch totals on the Summary sheet.
func WriteWorkbook(path string, report *models.BatchReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TasksSheet); err != nil {
		return err
	}
	if err := writeTasks(f, report); err != nil {
		return fmt.Errorf("failed to write %s sheet: %w", TasksSheet, err)
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}
	if err := writeSummary(f, report); err != nil {
		return fmt.Errorf("failed to write %s sheet: %w", SummarySheet, err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func writeTasks(f *excelize.File, report *models.BatchReport) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(TasksSheet, "A1", &taskHeader); err != nil {
		return err
	}
	if err := f.SetRowStyle(TasksSheet, 1, 1, bold); err != nil {
		return err
	}

	for i, t := range report.Tasks {
		row := []any{t.TaskID, t.Class.Value(), t.State.Value(), "", "", "", "", ""}
		if t.Result != nil {
			row[3] = models.Worker{ID: t.Result.WorkerID}.Name()
			row[4] = t.Result.Payload
			row[5] = util.DurationToMS(t.Result.Elapsed)
			row[6] = t.Arrival
		}
		if t.Err != nil {
			row[7] = t.Err.Error()
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(TasksSheet, cell, &row); err != nil {
			return err
		}
	}

	return f.SetColWidth(TasksSheet, "A", "H", 18)
}

func writeSummary(f *excelize.File, report *models.BatchReport) error {
	received := report.Count(models.ClassReceived)
	rows := [][]any{
		{"Batch", report.ID.String()},
		{"Policy", string(report.Policy)},
		{"Stop reason", report.Collected.Reason.Value()},
		{"Tasks", report.NumTasks},
		{"Workers", report.NumWorkers},
		{"Received", received},
		{"Timed out", report.Count(models.ClassTimedOut)},
		{"Faulted", report.Count(models.ClassFaulted)},
		{"Unexpected", report.Count(models.ClassUnexpected)},
		{"Received (%)", util.Percent(received, report.NumTasks)},
		{"Duration (ms)", util.DurationToMS(report.FinishedAt.Sub(report.StartedAt))},
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}

	return f.SetColWidth(SummarySheet, "A", "B", 24)
}
