// Package store implements the batch export layer.
//
// A finished batch can be exported to a DuckDB database file. The export is a
// one-shot report artifact: batches never read it back.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                         Store (facade)                          │
//	├────────────────────────────────┬────────────────────────────────┤
//	│          BatchStore            │         OutcomeStore           │
//	│              ▼                 │              ▼                 │
//	│           batches              │         task_outcomes          │
//	├────────────────────────────────┴────────────────────────────────┤
//	│                       QueryInterceptor                          │
//	└─────────────────────────────────────────────────────────────────┘
//
// # Tables
//
// Tables created by migrations (internal/store/migrations/sql/):
//
//	┌────────────────────┬─────────────────────────────────────────────┐
//	│  Table             │  Purpose                                    │
//	├────────────────────┼─────────────────────────────────────────────┤
//	│  batches           │  One summary row per batch                  │
//	│  task_outcomes     │  One row per task, keyed (batch_id, task_id)│
//	│  schema_migrations │  Migration version tracking                 │
//	└────────────────────┴─────────────────────────────────────────────┘
//
// Schema:
//
//	batches (
//	    id VARCHAR PRIMARY KEY,
//	    policy VARCHAR,
//	    stop_reason VARCHAR,
//	    num_tasks INTEGER,
//	    num_workers INTEGER,
//	    started_at TIMESTAMP,
//	    finished_at TIMESTAMP
//	)
//
//	task_outcomes (
//	    batch_id VARCHAR,
//	    task_id INTEGER,
//	    classification VARCHAR,   -- received|timed_out|faulted|unexpected
//	    state VARCHAR,            -- terminal task state
//	    worker_id INTEGER,        -- NULL unless received
//	    payload VARCHAR,          -- NULL unless received
//	    elapsed_ms DOUBLE,        -- NULL unless received
//	    error VARCHAR,            -- recorded fault, if any
//	    arrival INTEGER,          -- position in the collected set, -1 if missing
//	    PRIMARY KEY (batch_id, task_id)
//	)
//
// # Initialization Flow
//
//	Open(ctx, path)
//	    ├── NewDB(path)        → duckdb driver, ":memory:" for an in-memory database
//	    ├── NewStore(db)       → sub-stores share one QueryInterceptor
//	    └── migrations.Run()   → creates batches, task_outcomes
//
// # Saving
//
// SaveReport upserts the batch row and the task_outcomes rows of the batch in
// one transaction, deleting rows of tasks the report no longer has. Exporting
// the same batch twice leaves one copy; a failed export leaves the previous one.
//
// # List Options
//
// BatchStore.List and OutcomeStore.List/Count use the functional options pattern.
// Each ListOption modifies the squirrel.SelectBuilder:
//
//	records, err := s.Outcome().List(ctx,
//	    store.ByBatch(id),
//	    store.ByClass(models.ClassTimedOut, models.ClassFaulted),
//	    store.WithDefaultSort(),
//	    store.WithLimit(50),
//	)
//
//   - ByBatch(ids ...string): WHERE batch_id IN (...)
//   - ByClass(classes ...): WHERE classification IN (...)
//   - ByPolicy(policies ...): WHERE policy IN (...), batches only
//   - WithLimit, WithOffset: pagination
//   - WithDefaultSort(): ORDER BY batch_id, task_id
//
// Empty filters are no-ops.
//
// # QueryInterceptor
//
// All statements go through a QueryInterceptor which logs the query, its
// arguments and its duration at debug level. WithTx binds an interceptor to a
// transaction so multi-statement writes keep the same tracing.
package store
