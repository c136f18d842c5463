package database

import (
	"context"
)

// WorkerReader provides read-only access to the worker registry
type WorkerReader interface {
	// GetWorker retrieves a worker by worker id, returns nil if not found
	GetWorker(ctx context.Context, workerID string) (*StoredWorker, error)
	// ListWorkers returns all workers in registration order
	ListWorkers(ctx context.Context) ([]StoredWorker, error)
	// ListWorkerIDs returns the worker id of every registered worker
	ListWorkerIDs(ctx context.Context) ([]string, error)
	// CountWorkers returns the number of registered workers
	CountWorkers(ctx context.Context) (int, error)
}

// WorkerWriter provides write access to the worker registry
type WorkerWriter interface {
	WorkerReader

	// CreateWorker inserts a worker. Returns ErrDuplicateWorker if the worker id is taken.
	CreateWorker(ctx context.Context, workerID, name string) (*StoredWorker, error)
	// DeleteWorker removes a worker. Deleting an unknown worker is not an error.
	DeleteWorker(ctx context.Context, workerID string) error
}

// AttendanceReader provides read-only access to attendance rows
type AttendanceReader interface {
	// ListAttendanceByDate returns all rows for a date, oldest first by (created_at, id)
	ListAttendanceByDate(ctx context.Context, date string) ([]StoredAttendance, error)
	// ListAttendance returns rows newest first by (created_at, id). An empty date
	// returns rows of every date.
	ListAttendance(ctx context.Context, date string) ([]StoredAttendance, error)
}

// AttendanceWriter provides write access to attendance rows
type AttendanceWriter interface {
	AttendanceReader

	// InsertAttendance appends a row and fills in its ID and CreatedAt
	InsertAttendance(ctx context.Context, rec *StoredAttendance) error
	// DeleteAttendanceByWorker removes all rows of a worker and returns the count deleted
	DeleteAttendanceByWorker(ctx context.Context, workerID string) (int64, error)
}

// Store bundles the repositories of one backend.
type Store struct {
	Workers    WorkerWriter
	Attendance AttendanceWriter
	close      func() error
}

// NewStore creates a Store; closeFn releases the backend connection and may be nil.
func NewStore(workers WorkerWriter, attendance AttendanceWriter, closeFn func() error) *Store {
	return &Store{Workers: workers, Attendance: attendance, close: closeFn}
}

// Close releases the underlying connection
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}
