package database

import (
	"errors"
	"time"
)

// ErrDuplicateWorker is returned by CreateWorker when the worker id is already taken.
var ErrDuplicateWorker = errors.New("worker id already registered")

// StoredWorker represents a registered worker
type StoredWorker struct {
	ID        int64     `json:"id"`
	WorkerID  string    `json:"worker_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// StoredAttendance represents one attendance row. Rows are append-only; ID and CreatedAt
// are assigned by the store.
type StoredAttendance struct {
	ID               int64            `json:"id"`
	WorkerID         string           `json:"worker_id"`
	AttendanceStatus AttendanceStatus `json:"attendance_status"`
	PPEStatus        PPEStatus        `json:"ppe_status"`
	PPEMissingItems  string           `json:"ppe_missing_items"`
	PPEImageURL      *string          `json:"ppe_image_url"`
	Date             string           `json:"date"` // YYYY-MM-DD
	CreatedAt        time.Time        `json:"created_at"`
}

// Before reports whether a was written before b. Rows written in the same instant are
// ordered by their sequence id.
func (a StoredAttendance) Before(b StoredAttendance) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
