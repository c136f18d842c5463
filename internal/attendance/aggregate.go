package attendance

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/kozaktomas/site-attendance/internal/database"
)

// Counts holds the number of workers whose latest status is PRESENT or ABSENT.
type Counts struct {
	Present int
	Absent  int
}

// Stats is the daily summary served to the admin panel.
type Stats struct {
	Present      int    `json:"present"`
	Absent       int    `json:"absent"`
	TotalWorkers int    `json:"total_workers"`
	Date         string `json:"date"`
}

// LatestStatuses returns the last written status of each worker. Rows are ordered by
// (created_at, id) first, so input order does not matter.
func LatestStatuses(records []database.StoredAttendance) map[string]database.AttendanceStatus {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b database.StoredAttendance) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		default:
			return 0
		}
	})

	latest := make(map[string]database.AttendanceStatus, len(sorted))
	for _, r := range sorted {
		latest[r.WorkerID] = r.AttendanceStatus
	}
	return latest
}

// Tally counts workers by their latest status.
func Tally(records []database.StoredAttendance) Counts {
	var c Counts
	for _, status := range LatestStatuses(records) {
		switch status {
		case database.StatusPresent:
			c.Present++
		case database.StatusAbsent:
			c.Absent++
		}
	}
	return c
}

// DailyStats summarises a date; an empty date means today. Workers who never checked
// in are neither present nor absent.
func (e *Engine) DailyStats(ctx context.Context, date string) (*Stats, error) {
	day, err := e.resolveDate(date)
	if err != nil {
		return nil, err
	}

	rows, err := e.attendance.ListAttendanceByDate(ctx, day)
	if err != nil {
		return nil, Internal("list attendance", err)
	}

	total, err := e.workers.CountWorkers(ctx)
	if err != nil {
		return nil, Internal("count workers", err)
	}

	c := Tally(rows)
	return &Stats{
		Present:      c.Present,
		Absent:       c.Absent,
		TotalWorkers: total,
		Date:         day,
	}, nil
}

// Logs returns attendance rows newest first. An empty date returns every date.
func (e *Engine) Logs(ctx context.Context, date string) ([]database.StoredAttendance, error) {
	date = strings.TrimSpace(date)
	if date != "" {
		if err := validateDate(date); err != nil {
			return nil, err
		}
	}

	rows, err := e.attendance.ListAttendance(ctx, date)
	if err != nil {
		return nil, Internal("list attendance", err)
	}
	if rows == nil {
		rows = []database.StoredAttendance{}
	}
	return rows, nil
}

// resolveDate validates date, substituting today for an empty value.
func (e *Engine) resolveDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return e.Today(), nil
	}
	if err := validateDate(date); err != nil {
		return "", err
	}
	return date, nil
}

func validateDate(date string) error {
	if _, err := time.Parse(database.DateLayout, date); err != nil {
		return Validation("invalid date %q, expected YYYY-MM-DD", date)
	}
	return nil
}
