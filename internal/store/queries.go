package store

// Batch queries
const (
	queryGetBatch = `
		SELECT id, policy, stop_reason, num_tasks, num_workers, started_at, finished_at
		FROM batches WHERE id = ?`

	queryUpsertBatch = `
		INSERT INTO batches (id, policy, stop_reason, num_tasks, num_workers, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			policy = EXCLUDED.policy,
			stop_reason = EXCLUDED.stop_reason,
			num_tasks = EXCLUDED.num_tasks,
			num_workers = EXCLUDED.num_workers,
			started_at = EXCLUDED.started_at,
			finished_at = EXCLUDED.finished_at`
)

// Outcome queries
const (
	queryUpsertOutcomesSuffix = `
		ON CONFLICT (batch_id, task_id) DO UPDATE SET
			classification = EXCLUDED.classification,
			state = EXCLUDED.state,
			worker_id = EXCLUDED.worker_id,
			payload = EXCLUDED.payload,
			elapsed_ms = EXCLUDED.elapsed_ms,
			error = EXCLUDED.error,
			arrival = EXCLUDED.arrival`
)
