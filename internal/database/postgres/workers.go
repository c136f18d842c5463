package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/site-attendance/internal/database"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint violation.
const uniqueViolation = "23505"

// WorkerRepository provides PostgreSQL-backed worker storage
type WorkerRepository struct {
	pool *Pool
}

// NewWorkerRepository creates a new PostgreSQL worker repository
func NewWorkerRepository(pool *Pool) *WorkerRepository {
	return &WorkerRepository{pool: pool}
}

// GetWorker retrieves a worker by worker id, returns nil if not found
func (r *WorkerRepository) GetWorker(ctx context.Context, workerID string) (*database.StoredWorker, error) {
	query := `
		SELECT id, worker_id, name, created_at
		FROM workers
		WHERE worker_id = $1
	`

	var w database.StoredWorker
	err := r.pool.QueryRow(ctx, query, workerID).Scan(&w.ID, &w.WorkerID, &w.Name, &w.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get worker: %w", err)
	}
	return &w, nil
}

// ListWorkers returns all workers in registration order
func (r *WorkerRepository) ListWorkers(ctx context.Context) ([]database.StoredWorker, error) {
	rows, err := r.pool.Query(ctx, "SELECT id, worker_id, name, created_at FROM workers ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	defer rows.Close()

	var workers []database.StoredWorker
	for rows.Next() {
		var w database.StoredWorker
		if err := rows.Scan(&w.ID, &w.WorkerID, &w.Name, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan worker: %w", err)
		}
		workers = append(workers, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workers: %w", err)
	}
	return workers, nil
}

// ListWorkerIDs returns the worker id of every registered worker
func (r *WorkerRepository) ListWorkerIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, "SELECT worker_id FROM workers")
	if err != nil {
		return nil, fmt.Errorf("list worker ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan worker id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate worker ids: %w", err)
	}
	return ids, nil
}

// CountWorkers returns the number of registered workers
func (r *WorkerRepository) CountWorkers(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM workers").Scan(&count); err != nil {
		return 0, fmt.Errorf("count workers: %w", err)
	}
	return count, nil
}

// CreateWorker inserts a worker
func (r *WorkerRepository) CreateWorker(ctx context.Context, workerID, name string) (*database.StoredWorker, error) {
	query := `
		INSERT INTO workers (worker_id, name)
		VALUES ($1, $2)
		RETURNING id, worker_id, name, created_at
	`

	var w database.StoredWorker
	err := r.pool.QueryRow(ctx, query, workerID, name).Scan(&w.ID, &w.WorkerID, &w.Name, &w.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, fmt.Errorf("create worker %s: %w", workerID, database.ErrDuplicateWorker)
		}
		return nil, fmt.Errorf("create worker: %w", err)
	}
	return &w, nil
}

// DeleteWorker removes a worker
func (r *WorkerRepository) DeleteWorker(ctx context.Context, workerID string) error {
	if _, err := r.pool.Exec(ctx, "DELETE FROM workers WHERE worker_id = $1", workerID); err != nil {
		return fmt.Errorf("delete worker: %w", err)
	}
	return nil
}
