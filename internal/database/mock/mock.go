// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/kozaktomas/site-attendance/internal/database"
)

// MockWorkerRepository is a mock implementation of database.WorkerWriter
type MockWorkerRepository struct {
	mu      sync.RWMutex
	workers []database.StoredWorker
	nextID  int64

	// Error injection
	GetError    error
	ListError   error
	CountError  error
	CreateError error
	DeleteError error
}

// NewMockWorkerRepository creates a new mock worker repository
func NewMockWorkerRepository() *MockWorkerRepository {
	return &MockWorkerRepository{nextID: 1}
}

// AddWorker adds a worker to the mock store, bypassing duplicate checks
func (m *MockWorkerRepository) AddWorker(workerID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workers = append(m.workers, database.StoredWorker{
		ID:        m.nextID,
		WorkerID:  workerID,
		Name:      name,
		CreatedAt: time.Now(),
	})
	m.nextID++
}

// GetWorker retrieves a worker by worker id
func (m *MockWorkerRepository) GetWorker(ctx context.Context, workerID string) (*database.StoredWorker, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, w := range m.workers {
		if w.WorkerID == workerID {
			return &w, nil
		}
	}
	return nil, nil
}

// ListWorkers returns all workers in registration order
func (m *MockWorkerRepository) ListWorkers(ctx context.Context) ([]database.StoredWorker, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.workers), nil
}

// ListWorkerIDs returns all worker ids
func (m *MockWorkerRepository) ListWorkerIDs(ctx context.Context) ([]string, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.workers))
	for _, w := range m.workers {
		ids = append(ids, w.WorkerID)
	}
	return ids, nil
}

// CountWorkers returns the number of workers
func (m *MockWorkerRepository) CountWorkers(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.workers), nil
}

// CreateWorker inserts a worker
func (m *MockWorkerRepository) CreateWorker(ctx context.Context, workerID, name string) (*database.StoredWorker, error) {
	if m.CreateError != nil {
		return nil, m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.workers {
		if w.WorkerID == workerID {
			return nil, database.ErrDuplicateWorker
		}
	}
	w := database.StoredWorker{
		ID:        m.nextID,
		WorkerID:  workerID,
		Name:      name,
		CreatedAt: time.Now(),
	}
	m.nextID++
	m.workers = append(m.workers, w)
	return &w, nil
}

// DeleteWorker removes a worker
func (m *MockWorkerRepository) DeleteWorker(ctx context.Context, workerID string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workers = slices.DeleteFunc(m.workers, func(w database.StoredWorker) bool {
		return w.WorkerID == workerID
	})
	return nil
}

// MockAttendanceRepository is a mock implementation of database.AttendanceWriter
type MockAttendanceRepository struct {
	mu     sync.RWMutex
	rows   []database.StoredAttendance
	nextID int64

	// Now stamps CreatedAt on inserted rows. Defaults to time.Now.
	Now func() time.Time

	// Error injection
	ListError   error
	InsertError error
	DeleteError error
}

// NewMockAttendanceRepository creates a new mock attendance repository
func NewMockAttendanceRepository() *MockAttendanceRepository {
	return &MockAttendanceRepository{nextID: 1, Now: time.Now}
}

// AddRow stores a row as-is, assigning an id when it has none
func (m *MockAttendanceRepository) AddRow(rec database.StoredAttendance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID == 0 {
		rec.ID = m.nextID
	}
	m.nextID = max(m.nextID, rec.ID) + 1
	m.rows = append(m.rows, rec)
}

// Rows returns a copy of every stored row in insertion order
func (m *MockAttendanceRepository) Rows() []database.StoredAttendance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.rows)
}

// ListAttendanceByDate returns rows for a date, oldest first
func (m *MockAttendanceRepository) ListAttendanceByDate(ctx context.Context, date string) ([]database.StoredAttendance, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	rows := m.filter(date)
	slices.SortStableFunc(rows, compareOldestFirst)
	return rows, nil
}

// ListAttendance returns rows newest first, optionally for a single date
func (m *MockAttendanceRepository) ListAttendance(ctx context.Context, date string) ([]database.StoredAttendance, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	rows := m.filter(date)
	slices.SortStableFunc(rows, func(a, b database.StoredAttendance) int {
		return compareOldestFirst(b, a)
	})
	return rows, nil
}

// InsertAttendance appends a row
func (m *MockAttendanceRepository) InsertAttendance(ctx context.Context, rec *database.StoredAttendance) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = m.nextID
	rec.CreatedAt = m.Now()
	m.nextID++
	m.rows = append(m.rows, *rec)
	return nil
}

// DeleteAttendanceByWorker removes all rows of a worker
func (m *MockAttendanceRepository) DeleteAttendanceByWorker(ctx context.Context, workerID string) (int64, error) {
	if m.DeleteError != nil {
		return 0, m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.rows)
	m.rows = slices.DeleteFunc(m.rows, func(r database.StoredAttendance) bool {
		return r.WorkerID == workerID
	})
	return int64(before - len(m.rows)), nil
}

func (m *MockAttendanceRepository) filter(date string) []database.StoredAttendance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rows []database.StoredAttendance
	for _, r := range m.rows {
		if date == "" || r.Date == date {
			rows = append(rows, r)
		}
	}
	return rows
}

func compareOldestFirst(a, b database.StoredAttendance) int {
	switch {
	case a.Before(b):
		return -1
	case b.Before(a):
		return 1
	default:
		return 0
	}
}
