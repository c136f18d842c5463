// Package sqlite implements the repositories on a local SQLite file for development
// setups that have no PostgreSQL at hand.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/site-attendance/internal/database"
	"github.com/mattn/go-sqlite3"
)

// timestampLayout matches the created_at default below.
const timestampLayout = "2006-01-02T15:04:05.000Z"

const schema = `
CREATE TABLE IF NOT EXISTS workers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	worker_id TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);

CREATE TABLE IF NOT EXISTS attendance (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	worker_id TEXT NOT NULL,
	attendance_status TEXT NOT NULL,
	ppe_status TEXT NOT NULL,
	ppe_missing_items TEXT NOT NULL DEFAULT '',
	ppe_image_url TEXT,
	date TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);

CREATE INDEX IF NOT EXISTS idx_attendance_date_created ON attendance (date, created_at, id);
CREATE INDEX IF NOT EXISTS idx_attendance_worker ON attendance (worker_id);
`

// DB wraps a SQLite connection.
type DB struct {
	db *sql.DB
}

// NewDB opens the SQLite file at path and creates the schema if needed.
func NewDB(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serialises writers and keeps ids monotonic.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	if err := d.db.Close(); err != nil {
		return fmt.Errorf("closing database connection: %w", err)
	}
	return nil
}

// Open opens the SQLite file and returns the repositories bundled as a database.Store.
func Open(path string) (*database.Store, error) {
	db, err := NewDB(path)
	if err != nil {
		return nil, err
	}
	return database.NewStore(NewWorkerRepository(db), NewAttendanceRepository(db), db.Close), nil
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// WorkerRepository provides SQLite-backed worker storage
type WorkerRepository struct {
	db *DB
}

// NewWorkerRepository creates a new SQLite worker repository
func NewWorkerRepository(db *DB) *WorkerRepository {
	return &WorkerRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorker(row rowScanner) (database.StoredWorker, error) {
	var (
		w         database.StoredWorker
		createdAt string
	)
	if err := row.Scan(&w.ID, &w.WorkerID, &w.Name, &createdAt); err != nil {
		return w, err
	}
	ts, err := parseTimestamp(createdAt)
	if err != nil {
		return w, err
	}
	w.CreatedAt = ts
	return w, nil
}

// GetWorker retrieves a worker by worker id, returns nil if not found
func (r *WorkerRepository) GetWorker(ctx context.Context, workerID string) (*database.StoredWorker, error) {
	row := r.db.db.QueryRowContext(ctx,
		"SELECT id, worker_id, name, created_at FROM workers WHERE worker_id = ?", workerID)
	w, err := scanWorker(row)
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
	rows, err := r.db.db.QueryContext(ctx, "SELECT id, worker_id, name, created_at FROM workers ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	defer rows.Close()

	var workers []database.StoredWorker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
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
	rows, err := r.db.db.QueryContext(ctx, "SELECT worker_id FROM workers")
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
	if err := r.db.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM workers").Scan(&count); err != nil {
		return 0, fmt.Errorf("count workers: %w", err)
	}
	return count, nil
}

// CreateWorker inserts a worker
func (r *WorkerRepository) CreateWorker(ctx context.Context, workerID, name string) (*database.StoredWorker, error) {
	row := r.db.db.QueryRowContext(ctx,
		"INSERT INTO workers (worker_id, name) VALUES (?, ?) RETURNING id, worker_id, name, created_at",
		workerID, name)
	w, err := scanWorker(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create worker %s: %w", workerID, database.ErrDuplicateWorker)
		}
		return nil, fmt.Errorf("create worker: %w", err)
	}
	return &w, nil
}

// DeleteWorker removes a worker
func (r *WorkerRepository) DeleteWorker(ctx context.Context, workerID string) error {
	if _, err := r.db.db.ExecContext(ctx, "DELETE FROM workers WHERE worker_id = ?", workerID); err != nil {
		return fmt.Errorf("delete worker: %w", err)
	}
	return nil
}
