package store

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/kubev2v/taskbatch/internal/models"
	srvErrors "github.com/kubev2v/taskbatch/pkg/errors"
)

// BatchStore handles batch summaries.
type BatchStore struct {
	db QueryInterceptor
}

func NewBatchStore(db QueryInterceptor) *BatchStore {
	return &BatchStore{db: db}
}

// Get retrieves the batch with the given id.
func (s *BatchStore) Get(ctx context.Context, id string) (*models.BatchRecord, error) {
	row := s.db.QueryRowContext(ctx, queryGetBatch, id)

	rec, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewBatchNotFoundError(id)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Save stores or updates a batch summary.
func (s *BatchStore) Save(ctx context.Context, rec models.BatchRecord) error {
	_, err := s.db.ExecContext(ctx, queryUpsertBatch,
		rec.ID,
		string(rec.Policy),
		string(rec.StopReason),
		rec.NumTasks,
		rec.NumWorkers,
		rec.StartedAt,
		rec.FinishedAt,
	)
	return err
}

// List returns batches, most recent first.
func (s *BatchStore) List(ctx context.Context, opts ...ListOption) ([]models.BatchRecord, error) {
	builder := sq.Select("id", "policy", "stop_reason", "num_tasks", "num_workers", "started_at", "finished_at").
		From("batches")

	for _, opt := range opts {
		builder = opt(builder)
	}
	builder = builder.OrderBy("started_at DESC", "id")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []models.BatchRecord
	for rows.Next() {
		rec, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, *rec)
	}

	return batches, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBatch(row scanner) (*models.BatchRecord, error) {
	var (
		rec        models.BatchRecord
		policy     string
		stopReason string
	)
	err := row.Scan(
		&rec.ID,
		&policy,
		&stopReason,
		&rec.NumTasks,
		&rec.NumWorkers,
		&rec.StartedAt,
		&rec.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Policy = models.PolicyKind(policy)
	rec.StopReason = models.StopReason(stopReason)
	return &rec, nil
}
