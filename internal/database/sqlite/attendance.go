package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kozaktomas/site-attendance/internal/database"
)

const attendanceColumns = `id, worker_id, attendance_status, ppe_status, ppe_missing_items, ppe_image_url, date, created_at`

// AttendanceRepository provides SQLite-backed attendance storage
type AttendanceRepository struct {
	db *DB
}

// NewAttendanceRepository creates a new SQLite attendance repository
func NewAttendanceRepository(db *DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// ListAttendanceByDate returns all rows for a date, oldest first
func (r *AttendanceRepository) ListAttendanceByDate(ctx context.Context, date string) ([]database.StoredAttendance, error) {
	rows, err := r.db.db.QueryContext(ctx,
		"SELECT "+attendanceColumns+" FROM attendance WHERE date = ? ORDER BY created_at, id", date)
	if err != nil {
		return nil, fmt.Errorf("list attendance for %s: %w", date, err)
	}
	return scanAttendance(rows)
}

// ListAttendance returns rows newest first, optionally restricted to a date
func (r *AttendanceRepository) ListAttendance(ctx context.Context, date string) ([]database.StoredAttendance, error) {
	query := "SELECT " + attendanceColumns + " FROM attendance"
	var args []any
	if date != "" {
		query += " WHERE date = ?"
		args = append(args, date)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return scanAttendance(rows)
}

// InsertAttendance appends a row and fills in its ID and CreatedAt
func (r *AttendanceRepository) InsertAttendance(ctx context.Context, rec *database.StoredAttendance) error {
	var createdAt string
	err := r.db.db.QueryRowContext(ctx, `
		INSERT INTO attendance (worker_id, attendance_status, ppe_status, ppe_missing_items, ppe_image_url, date)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, created_at`,
		rec.WorkerID,
		string(rec.AttendanceStatus),
		string(rec.PPEStatus),
		rec.PPEMissingItems,
		rec.PPEImageURL,
		rec.Date,
	).Scan(&rec.ID, &createdAt)
	if err != nil {
		return fmt.Errorf("insert attendance: %w", err)
	}

	ts, err := parseTimestamp(createdAt)
	if err != nil {
		return fmt.Errorf("insert attendance: %w", err)
	}
	rec.CreatedAt = ts
	return nil
}

// DeleteAttendanceByWorker removes all rows of a worker and returns the count deleted
func (r *AttendanceRepository) DeleteAttendanceByWorker(ctx context.Context, workerID string) (int64, error) {
	result, err := r.db.db.ExecContext(ctx, "DELETE FROM attendance WHERE worker_id = ?", workerID)
	if err != nil {
		return 0, fmt.Errorf("delete attendance: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}
	return count, nil
}

func scanAttendance(rows *sql.Rows) ([]database.StoredAttendance, error) {
	defer rows.Close()

	var records []database.StoredAttendance
	for rows.Next() {
		var (
			rec       database.StoredAttendance
			status    string
			ppe       string
			imageURL  sql.NullString
			createdAt string
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.WorkerID,
			&status,
			&ppe,
			&rec.PPEMissingItems,
			&imageURL,
			&rec.Date,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		ts, err := parseTimestamp(createdAt)
		if err != nil {
			return nil, err
		}
		rec.CreatedAt = ts
		rec.AttendanceStatus = database.AttendanceStatus(status)
		rec.PPEStatus = database.PPEStatus(ppe)
		if imageURL.Valid {
			rec.PPEImageURL = &imageURL.String
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance: %w", err)
	}
	return records, nil
}
