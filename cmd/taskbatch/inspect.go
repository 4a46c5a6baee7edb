package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kubev2v/taskbatch/internal/models"
	"github.com/kubev2v/taskbatch/internal/store"
	srvErrors "github.com/kubev2v/taskbatch/pkg/errors"
)

func newInspectCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show batches exported to a DuckDB database",
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

			path, _ := cmd.Flags().GetString("db")
			batchID, _ := cmd.Flags().GetString("batch")
			classes, _ := cmd.Flags().GetStringSlice("class")
			limit, _ := cmd.Flags().GetUint64("limit")

			if path == "" {
				return srvErrors.NewInvalidConfigurationError("db", "is required")
			}
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("failed to open export database: %w", err)
			}

			s, err := store.Open(cmd.Context(), path)
			if err != nil {
				return err
			}
			defer s.Close()

			if batchID == "" {
				return listBatches(cmd.Context(), s, cmd.OutOrStdout(), limit)
			}
			return showBatch(cmd.Context(), s, cmd.OutOrStdout(), batchID, classes)
		},
	}

	flags := cmd.Flags()
	flags.String("db", "", "DuckDB database written by run --export-db")
	flags.String("batch", "", "show the tasks of this batch")
	flags.StringSlice("class", nil, "only show tasks of these classifications")
	flags.Uint64("limit", 20, "maximum number of batches listed")

	return cmd
}

func listBatches(ctx context.Context, s *store.Store, out io.Writer, limit uint64) error {
	batches, err := s.Batch().List(ctx, store.WithLimit(limit))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BATCH\tPOLICY\tSTOP REASON\tTASKS\tWORKERS\tSTARTED\tDURATION")
	for _, b := range batches {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			b.ID,
			b.Policy,
			b.StopReason,
			b.NumTasks,
			b.NumWorkers,
			b.StartedAt.Local().Format(time.RFC3339),
			b.FinishedAt.Sub(b.StartedAt).Round(time.Millisecond),
		)
	}
	return w.Flush()
}

func showBatch(ctx context.Context, s *store.Store, out io.Writer, id string, classes []string) error {
	if _, err := s.Batch().Get(ctx, id); err != nil {
		return err
	}

	filter := make([]models.Classification, 0, len(classes))
	for _, c := range classes {
		filter = append(filter, models.Classification(c))
	}

	records, err := s.Outcome().List(ctx, store.ByBatch(id), store.ByClass(filter...), store.WithDefaultSort())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TASK\tCLASS\tSTATE\tWORKER\tPAYLOAD\tERROR")
	for _, r := range records {
		state, worker, payload, errMsg := "-", "-", "-", "-"
		if r.State != "" {
			state = r.State.Value()
		}
		if r.WorkerID != nil {
			worker = models.Worker{ID: *r.WorkerID}.Name()
		}
		if r.Payload != nil {
			payload = *r.Payload
		}
		if r.Error != nil {
			errMsg = *r.Error
		}
		fmt.Fprintf(w, "Task-%d\t%s\t%s\t%s\t%s\t%s\n", r.TaskID, r.Class, state, worker, payload, errMsg)
	}
	return w.Flush()
}
