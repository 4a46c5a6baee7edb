package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kubev2v/taskbatch/internal/config"
	"github.com/kubev2v/taskbatch/internal/models"
	"github.com/kubev2v/taskbatch/internal/report"
	"github.com/kubev2v/taskbatch/internal/services"
	"github.com/kubev2v/taskbatch/internal/store"
	"github.com/kubev2v/taskbatch/internal/util"
)

func newRunCmd(v *viper.Viper) *cobra.Command {
	d, err := config.NewConfiguration()
	if err != nil {
		panic(err)
	}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a batch of tasks and report which ones completed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v, cmd.Flags())
			if err != nil {
				return err
			}

			logger, err := setupLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runBatch(ctx, cfg, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.Int("tasks", d.Batch.Tasks, "number of tasks in the batch")
	flags.Int("workers", d.Batch.Workers, "worker pool size, 0 runs one worker per task")
	flags.String("policy", d.Collector.Policy, "collection policy: exhaustive, deadline or stream")
	flags.Duration("deadline", d.Collector.Deadline, "collection deadline of the deadline policy")
	flags.Duration("poll-interval", d.Collector.PollInterval, "longest wait between two empty polls of the deadline policy")
	flags.String("poll-backoff", d.Collector.PollBackoff, "pacing of empty polls: constant or exponential")
	flags.Bool("notify", d.Collector.Notify, "wait for arrivals instead of sleeping between polls")
	flags.Duration("min-duration", d.Work.MinDuration, "shortest simulated task duration")
	flags.Duration("max-duration", d.Work.MaxDuration, "longest simulated task duration")
	flags.Float64("fault-rate", d.Work.FaultRate, "fraction of tasks failing on purpose, within [0, 1]")
	flags.String("export-db", d.Export.DBPath, "export the batch to this DuckDB database file")
	flags.String("export-xlsx", d.Export.XLSXPath, "export the batch to this xlsx workbook")

	return cmd
}

func runBatch(ctx context.Context, cfg *config.Configuration, out io.Writer) error {
	log := zap.S().Named("run")
	log.Debugw("configuration loaded", "config", cfg.DebugMap())

	reporter := report.NewTextReporter(out, cfg.NoColor)
	processor := services.NewSimulatedProcessor(cfg.Work.MinDuration, cfg.Work.MaxDuration, cfg.Work.Step, cfg.Work.FaultRate)
	policy := newPolicy(cfg, reporter)

	rep, err := services.NewBatch(processor, policy, cfg.Batch.Workers).Run(ctx, cfg.Batch.Tasks)
	if err != nil {
		return err
	}

	// streamed results were already written as they arrived
	if policy.Kind() != models.PolicyUntilClosed {
		reporter.Results(rep)
	}
	reporter.Missing(rep)
	reporter.Summary(rep)

	for _, id := range util.SortedKeys(rep.Faults) {
		log.Debugw("task fault", "batch_id", rep.ID, "task_id", id, "error", rep.Faults[id])
	}

	return export(context.WithoutCancel(ctx), cfg.Export, rep)
}

func newPolicy(cfg *config.Configuration, reporter *report.TextReporter) services.Policy {
	switch cfg.PolicyKind() {
	case models.PolicyDeadline:
		d := services.NewDeadline(cfg.Collector.Deadline, cfg.Collector.PollInterval)
		d.Notify = cfg.Collector.Notify
		if cfg.Collector.PollBackoff == config.PollBackoffExponential {
			d.BackOff = services.NewExponentialPollBackOff(cfg.Collector.PollInterval)
		}
		return d
	case models.PolicyUntilClosed:
		return services.NewUntilClosed(reporter.Result)
	default:
		return services.NewExhaustive()
	}
}

func export(ctx context.Context, exp config.Export, rep *models.BatchReport) error {
	log := zap.S().Named("export")

	if exp.DBPath != "" {
		s, err := store.Open(ctx, exp.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open export database: %w", err)
		}
		defer s.Close()

		if err := s.SaveReport(ctx, rep); err != nil {
			return err
		}
		log.Infow("batch exported", "batch_id", rep.ID, "db", exp.DBPath)
	}

	if exp.XLSXPath != "" {
		if err := report.WriteWorkbook(exp.XLSXPath, rep); err != nil {
			return err
		}
		log.Infow("batch exported", "batch_id", rep.ID, "xlsx", exp.XLSXPath)
	}

	return nil
}
