package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kozaktomas/site-attendance/internal/database"
)

const attendanceColumns = `id, worker_id, attendance_status, ppe_status, ppe_missing_items, ppe_image_url, date, created_at`

// AttendanceRepository provides PostgreSQL-backed attendance storage
type AttendanceRepository struct {
	pool *Pool
}

// NewAttendanceRepository creates a new PostgreSQL attendance repository
func NewAttendanceRepository(pool *Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// ListAttendanceByDate returns all rows for a date, oldest first
func (r *AttendanceRepository) ListAttendanceByDate(ctx context.Context, date string) ([]database.StoredAttendance, error) {
	query := `SELECT ` + attendanceColumns + `
		FROM attendance
		WHERE date = $1::date
		ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("list attendance for %s: %w", date, err)
	}
	return scanAttendance(rows)
}

// ListAttendance returns rows newest first, optionally restricted to a date
func (r *AttendanceRepository) ListAttendance(ctx context.Context, date string) ([]database.StoredAttendance, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if date == "" {
		rows, err = r.pool.Query(ctx, `SELECT `+attendanceColumns+`
			FROM attendance
			ORDER BY created_at DESC, id DESC`)
	} else {
		rows, err = r.pool.Query(ctx, `SELECT `+attendanceColumns+`
			FROM attendance
			WHERE date = $1::date
			ORDER BY created_at DESC, id DESC`, date)
	}
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return scanAttendance(rows)
}

// InsertAttendance appends a row and fills in its ID and CreatedAt
func (r *AttendanceRepository) InsertAttendance(ctx context.Context, rec *database.StoredAttendance) error {
	query := `
		INSERT INTO attendance (worker_id, attendance_status, ppe_status, ppe_missing_items, ppe_image_url, date)
		VALUES ($1, $2, $3, $4, $5, $6::date)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		rec.WorkerID,
		string(rec.AttendanceStatus),
		string(rec.PPEStatus),
		rec.PPEMissingItems,
		rec.PPEImageURL,
		rec.Date,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert attendance: %w", err)
	}
	return nil
}

// DeleteAttendanceByWorker removes all rows of a worker and returns the count deleted
func (r *AttendanceRepository) DeleteAttendanceByWorker(ctx context.Context, workerID string) (int64, error) {
	result, err := r.pool.Exec(ctx, "DELETE FROM attendance WHERE worker_id = $1", workerID)
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
			rec      database.StoredAttendance
			status   string
			ppe      string
			imageURL sql.NullString
			date     time.Time
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.WorkerID,
			&status,
			&ppe,
			&rec.PPEMissingItems,
			&imageURL,
			&date,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		rec.AttendanceStatus = database.AttendanceStatus(status)
		rec.PPEStatus = database.PPEStatus(ppe)
		if imageURL.Valid {
			rec.PPEImageURL = &imageURL.String
		}
		rec.Date = date.Format(database.DateLayout)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance: %w", err)
	}
	return records, nil
}
