package store_test

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/taskbatch/internal/models"
	"github.com/kubev2v/taskbatch/internal/store"
)

func newReport() *models.BatchReport {
	start := time.Now()
	r0 := models.Result{TaskID: 0, WorkerID: 1, Payload: "Task-0 payload", Elapsed: 3 * time.Millisecond}
	r2 := models.Result{TaskID: 2, WorkerID: 0, Payload: "Task-2 payload", Elapsed: 7 * time.Millisecond}
	return &models.BatchReport{
		ID:         uuid.New(),
		Policy:     models.PolicyDeadline,
		NumTasks:   4,
		NumWorkers: 2,
		Collected: models.Collected{
			Results: []models.Result{r2, r0},
			Reason:  models.StopDeadlineElapsed,
		},
		Tasks: []models.TaskReport{
			{TaskID: 0, Class: models.ClassReceived, State: models.TaskStateReceived, Result: &r0, Arrival: 1},
			{TaskID: 1, Class: models.ClassTimedOut, State: models.TaskStateTimedOut, Err: context.Canceled, Arrival: -1},
			{TaskID: 2, Class: models.ClassReceived, State: models.TaskStateReceived, Result: &r2, Arrival: 0},
			{TaskID: 3, Class: models.ClassFaulted, State: models.TaskStateFaulted, Err: errors.New("disk full"), Arrival: -1},
		},
		StartedAt:  start,
		FinishedAt: start.Add(time.Second),
	}
}

var _ = Describe("OutcomeStore", func() {
	var (
		ctx context.Context
		s   *store.Store
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		s, err = store.Open(ctx, store.MemoryPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if s != nil {
			s.Close()
		}
	})

	Context("SaveReport", func() {
		// Given a finished batch report
		// When we export it
		// Then the summary and one row per task should be stored
		It("should store the batch and every task", func() {
			// Arrange
			report := newReport()

			// Act
			err := s.SaveReport(ctx, report)

			// Assert
			Expect(err).NotTo(HaveOccurred())

			batch, err := s.Batch().Get(ctx, report.ID.String())
			Expect(err).NotTo(HaveOccurred())
			Expect(batch.StopReason).To(Equal(models.StopDeadlineElapsed))

			records, err := s.Outcome().List(ctx, store.ByBatch(report.ID.String()), store.WithDefaultSort())
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(4))

			Expect(records[0].TaskID).To(Equal(0))
			Expect(records[0].Class).To(Equal(models.ClassReceived))
			Expect(records[0].State).To(Equal(models.TaskStateReceived))
			Expect(*records[0].WorkerID).To(Equal(1))
			Expect(*records[0].Payload).To(Equal("Task-0 payload"))
			Expect(*records[0].ElapsedMS).To(Equal(3.0))
			Expect(records[0].Arrival).To(Equal(1))
			Expect(records[0].Error).To(BeNil())

			Expect(records[1].Class).To(Equal(models.ClassTimedOut))
			Expect(records[1].State).To(Equal(models.TaskStateTimedOut))
			Expect(records[1].WorkerID).To(BeNil())
			Expect(records[1].Payload).To(BeNil())
			Expect(*records[1].Error).To(Equal("context canceled"))
			Expect(records[1].Arrival).To(Equal(-1))

			Expect(*records[3].Error).To(Equal("disk full"))
		})

		// Given an exported batch
		// When we export the same batch again
		// Then its rows should be replaced, not duplicated
		It("should replace the rows of a batch saved twice", func() {
			// Arrange
			report := newReport()
			Expect(s.SaveReport(ctx, report)).To(Succeed())

			// Act
			report.Tasks = report.Tasks[:2]
			err := s.SaveReport(ctx, report)

			// Assert
			Expect(err).NotTo(HaveOccurred())
			count, err := s.Outcome().Count(ctx, store.ByBatch(report.ID.String()))
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(2))
		})

		// Given an exported batch
		// When a later export of the same batch fails while writing its tasks
		// Then the previous export should be left untouched
		It("should keep the previous export when saving fails", func() {
			// Arrange
			report := newReport()
			Expect(s.SaveReport(ctx, report)).To(Succeed())

			// Act
			broken := *report
			broken.Collected.Reason = models.StopChannelClosed
			broken.Tasks = []models.TaskReport{
				{TaskID: 0, Class: models.ClassTimedOut, State: models.TaskStateTimedOut, Arrival: -1},
				{TaskID: 0, Class: models.ClassFaulted, State: models.TaskStateFaulted, Arrival: -1},
			}
			err := s.SaveReport(ctx, &broken)

			// Assert
			Expect(err).To(HaveOccurred())

			batch, err := s.Batch().Get(ctx, report.ID.String())
			Expect(err).NotTo(HaveOccurred())
			Expect(batch.StopReason).To(Equal(models.StopDeadlineElapsed))

			records, err := s.Outcome().List(ctx, store.ByBatch(report.ID.String()), store.WithDefaultSort())
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(4))
			Expect(records[0].Class).To(Equal(models.ClassReceived))
		})

		It("should update the rows of tasks exported again", func() {
			report := newReport()
			Expect(s.SaveReport(ctx, report)).To(Succeed())

			report.Tasks[1] = models.TaskReport{TaskID: 1, Class: models.ClassFaulted, State: models.TaskStateFaulted, Err: errors.New("oom"), Arrival: -1}
			Expect(s.SaveReport(ctx, report)).To(Succeed())

			records, err := s.Outcome().List(ctx, store.ByBatch(report.ID.String()), store.ByClass(models.ClassFaulted), store.WithDefaultSort())
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
			Expect(records[0].TaskID).To(Equal(1))
			Expect(*records[0].Error).To(Equal("oom"))
		})

		It("should store a batch without tasks", func() {
			report := newReport()
			report.Tasks = nil

			Expect(s.SaveReport(ctx, report)).To(Succeed())

			count, err := s.Outcome().Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})
	})

	Context("List", func() {
		var first, second *models.BatchReport

		BeforeEach(func() {
			first, second = newReport(), newReport()
			Expect(s.SaveReport(ctx, first)).To(Succeed())
			Expect(s.SaveReport(ctx, second)).To(Succeed())
		})

		It("should filter by classification across batches", func() {
			records, err := s.Outcome().List(ctx, store.ByClass(models.ClassTimedOut, models.ClassFaulted), store.WithDefaultSort())

			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(4))
			for _, r := range records {
				Expect(r.Class).To(BeElementOf(models.ClassTimedOut, models.ClassFaulted))
			}
		})

		It("should filter by batch", func() {
			count, err := s.Outcome().Count(ctx, store.ByBatch(second.ID.String()))

			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(4))
		})

		It("should paginate", func() {
			page, err := s.Outcome().List(ctx,
				store.ByBatch(first.ID.String()),
				store.WithDefaultSort(),
				store.WithLimit(2),
				store.WithOffset(2),
			)

			Expect(err).NotTo(HaveOccurred())
			Expect(page).To(HaveLen(2))
			Expect(page[0].TaskID).To(Equal(2))
			Expect(page[1].TaskID).To(Equal(3))
		})

		It("should ignore empty filters", func() {
			count, err := s.Outcome().Count(ctx, store.ByBatch(), store.ByClass())

			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(8))
		})
	})
})
