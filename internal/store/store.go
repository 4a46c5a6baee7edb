package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kubev2v/taskbatch/internal/models"
	"github.com/kubev2v/taskbatch/internal/store/migrations"
)

// Store provides access to all storage repositories.
type Store struct {
	db      *sql.DB
	qi      QueryInterceptor
	batch   *BatchStore
	outcome *OutcomeStore
}

func NewStore(db *sql.DB) *Store {
	qi := NewQueryInterceptor(db)
	return &Store{
		db:      db,
		qi:      qi,
		batch:   NewBatchStore(qi),
		outcome: NewOutcomeStore(qi),
	}
}

// Open opens the database at path, applies the migrations and returns the store.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := NewDB(path)
	if err != nil {
		return nil, err
	}
	s := NewStore(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, s.db)
}

func (s *Store) Batch() *BatchStore {
	return s.batch
}

func (s *Store) Outcome() *OutcomeStore {
	return s.outcome
}

// SaveReport exports a finished batch: its summary and one row per task, in a
// single transaction. Saving the same batch again replaces its rows. On error
// nothing of the export is kept.
func (s *Store) SaveReport(ctx context.Context, report *models.BatchReport) error {
	batch := models.NewBatchRecord(report)
	return s.qi.WithTx(ctx, func(tx QueryInterceptor) error {
		if err := NewBatchStore(tx).Save(ctx, batch); err != nil {
			return fmt.Errorf("failed to save batch %s: %w", batch.ID, err)
		}
		if err := NewOutcomeStore(tx).Replace(ctx, batch.ID, models.NewTaskRecords(report)); err != nil {
			return fmt.Errorf("failed to save outcomes of batch %s: %w", batch.ID, err)
		}
		return nil
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}
