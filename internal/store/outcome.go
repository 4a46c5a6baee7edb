package store

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"github.com/kubev2v/taskbatch/internal/models"
)

var outcomeColumns = []string{
	"batch_id",
	"task_id",
	"classification",
	"state",
	"worker_id",
	"payload",
	"elapsed_ms",
	"error",
	"arrival",
}

// OutcomeStore handles the per task rows of exported batches.
type OutcomeStore struct {
	db QueryInterceptor
}

func NewOutcomeStore(db QueryInterceptor) *OutcomeStore {
	return &OutcomeStore{db: db}
}

// Replace makes records the stored outcomes of batchID, in one transaction:
// rows of tasks absent from records are deleted, the others are upserted.
func (s *OutcomeStore) Replace(ctx context.Context, batchID string, records []models.TaskRecord) error {
	return s.db.WithTx(ctx, func(tx QueryInterceptor) error {
		ids := make([]int, 0, len(records))
		for _, r := range records {
			ids = append(ids, r.TaskID)
		}

		query, args, err := sq.Delete("task_outcomes").
			Where(sq.Eq{"batch_id": batchID}).
			Where(sq.NotEq{"task_id": ids}).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}

		if len(records) == 0 {
			return nil
		}
		return upsertOutcomes(ctx, tx, records)
	})
}

func upsertOutcomes(ctx context.Context, tx QueryInterceptor, records []models.TaskRecord) error {
	builder := sq.Insert("task_outcomes").
		Columns(outcomeColumns...).
		Suffix(queryUpsertOutcomesSuffix)
	for _, r := range records {
		builder = builder.Values(
			r.BatchID,
			r.TaskID,
			string(r.Class),
			string(r.State),
			r.WorkerID,
			r.Payload,
			r.ElapsedMS,
			r.Error,
			r.Arrival,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

func (s *OutcomeStore) List(ctx context.Context, opts ...ListOption) ([]models.TaskRecord, error) {
	builder := sq.Select(outcomeColumns...).From("task_outcomes")

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.TaskRecord
	for rows.Next() {
		var (
			rec      models.TaskRecord
			class    string
			state    sql.NullString
			workerID sql.NullInt64
			payload  sql.NullString
			elapsed  sql.NullFloat64
			errMsg   sql.NullString
		)
		err := rows.Scan(
			&rec.BatchID,
			&rec.TaskID,
			&class,
			&state,
			&workerID,
			&payload,
			&elapsed,
			&errMsg,
			&rec.Arrival,
		)
		if err != nil {
			return nil, err
		}
		rec.Class = models.Classification(class)
		rec.State = models.TaskState(state.String)
		if workerID.Valid {
			id := int(workerID.Int64)
			rec.WorkerID = &id
		}
		if payload.Valid {
			rec.Payload = &payload.String
		}
		if elapsed.Valid {
			rec.ElapsedMS = &elapsed.Float64
		}
		if errMsg.Valid {
			rec.Error = &errMsg.String
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (s *OutcomeStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	builder := sq.Select("COUNT(*)").From("task_outcomes")

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

type ListOption func(sq.SelectBuilder) sq.SelectBuilder

func ByBatch(ids ...string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(ids) == 0 {
			return b
		}
		return b.Where(sq.Eq{"batch_id": ids})
	}
}

func ByClass(classes ...models.Classification) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(classes) == 0 {
			return b
		}
		values := make([]string, 0, len(classes))
		for _, c := range classes {
			values = append(values, c.Value())
		}
		return b.Where(sq.Eq{"classification": values})
	}
}

func ByPolicy(policies ...models.PolicyKind) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(policies) == 0 {
			return b
		}
		values := make([]string, 0, len(policies))
		for _, p := range policies {
			values = append(values, string(p))
		}
		return b.Where(sq.Eq{"policy": values})
	}
}

func WithLimit(limit uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Limit(limit)
	}
}

func WithOffset(offset uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Offset(offset)
	}
}

// WithDefaultSort orders outcomes by batch then task id.
func WithDefaultSort() ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.OrderBy("batch_id", "task_id")
	}
}
