package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/kozaktomas/site-attendance/internal/database"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "attendance.db"))
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDB_RequiresPath(t *testing.T) {
	if _, err := NewDB(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestNewDB_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.db")
	ctx := context.Background()

	db, err := NewDB(path)
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	if _, err := NewWorkerRepository(db).CreateWorker(ctx, "1001", "Anna"); err != nil {
		t.Fatalf("CreateWorker failed: %v", err)
	}
	db.Close()

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	count, err := store.Workers.CountWorkers(ctx)
	if err != nil {
		t.Fatalf("CountWorkers failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 worker after reopen, got %d", count)
	}
}

func TestWorkerRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewWorkerRepository(openTestDB(t))

	w, err := repo.CreateWorker(ctx, "1001", "Jana Nováková")
	if err != nil {
		t.Fatalf("CreateWorker failed: %v", err)
	}
	if w.ID == 0 || w.CreatedAt.IsZero() {
		t.Errorf("expected id and created_at to be assigned, got %+v", w)
	}

	if _, err := repo.CreateWorker(ctx, "1001", "Duplicate"); !errors.Is(err, database.ErrDuplicateWorker) {
		t.Errorf("expected ErrDuplicateWorker, got %v", err)
	}

	if _, err := repo.CreateWorker(ctx, "1002", "Petr"); err != nil {
		t.Fatalf("CreateWorker failed: %v", err)
	}

	got, err := repo.GetWorker(ctx, "1001")
	if err != nil {
		t.Fatalf("GetWorker failed: %v", err)
	}
	if got == nil || got.Name != "Jana Nováková" {
		t.Errorf("unexpected worker %+v", got)
	}

	missing, err := repo.GetWorker(ctx, "4242")
	if err != nil {
		t.Fatalf("GetWorker failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown worker, got %+v", missing)
	}

	workers, err := repo.ListWorkers(ctx)
	if err != nil {
		t.Fatalf("ListWorkers failed: %v", err)
	}
	if len(workers) != 2 || workers[0].WorkerID != "1001" || workers[1].WorkerID != "1002" {
		t.Errorf("unexpected workers %+v", workers)
	}

	ids, err := repo.ListWorkerIDs(ctx)
	if err != nil {
		t.Fatalf("ListWorkerIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("expected 2 ids, got %v", ids)
	}

	if err := repo.DeleteWorker(ctx, "1001"); err != nil {
		t.Fatalf("DeleteWorker failed: %v", err)
	}
	if err := repo.DeleteWorker(ctx, "1001"); err != nil {
		t.Errorf("deleting an unknown worker should succeed: %v", err)
	}

	count, err := repo.CountWorkers(ctx)
	if err != nil {
		t.Fatalf("CountWorkers failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 worker, got %d", count)
	}
}

func TestAttendanceRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(openTestDB(t))

	var inserted []database.StoredAttendance
	for _, r := range []struct {
		worker string
		status database.AttendanceStatus
		date   string
	}{
		{"1001", database.StatusPresent, "2025-03-14"},
		{"1001", database.StatusAbsent, "2025-03-14"},
		{"1002", database.StatusPresent, "2025-03-14"},
		{"1002", database.StatusPresent, "2025-03-15"},
	} {
		rec := database.StoredAttendance{
			WorkerID:         r.worker,
			AttendanceStatus: r.status,
			PPEStatus:        database.PPEAdminOverride,
			PPEMissingItems:  "Marked " + string(r.status) + " by Admin",
			Date:             r.date,
		}
		if err := repo.InsertAttendance(ctx, &rec); err != nil {
			t.Fatalf("InsertAttendance failed: %v", err)
		}
		if rec.ID == 0 || rec.CreatedAt.IsZero() {
			t.Fatalf("expected id and created_at to be assigned, got %+v", rec)
		}
		inserted = append(inserted, rec)
	}

	for i := 1; i < len(inserted); i++ {
		if inserted[i].ID <= inserted[i-1].ID {
			t.Errorf("ids not monotonic: %d then %d", inserted[i-1].ID, inserted[i].ID)
		}
	}

	day, err := repo.ListAttendanceByDate(ctx, "2025-03-14")
	if err != nil {
		t.Fatalf("ListAttendanceByDate failed: %v", err)
	}
	if len(day) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(day))
	}
	for i := 1; i < len(day); i++ {
		if day[i].Before(day[i-1]) {
			t.Errorf("rows not oldest first at %d", i)
		}
	}
	if day[0].PPEImageURL != nil {
		t.Error("expected null image url")
	}

	all, err := repo.ListAttendance(ctx, "")
	if err != nil {
		t.Fatalf("ListAttendance failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(all))
	}
	if all[0].ID != inserted[3].ID || all[3].ID != inserted[0].ID {
		t.Errorf("expected newest first, got ids %d..%d", all[0].ID, all[3].ID)
	}

	filtered, err := repo.ListAttendance(ctx, "2025-03-15")
	if err != nil {
		t.Fatalf("ListAttendance failed: %v", err)
	}
	if len(filtered) != 1 || filtered[0].WorkerID != "1002" {
		t.Errorf("unexpected filtered rows %+v", filtered)
	}

	n, err := repo.DeleteAttendanceByWorker(ctx, "1001")
	if err != nil {
		t.Fatalf("DeleteAttendanceByWorker failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 deleted rows, got %d", n)
	}
	n, err = repo.DeleteAttendanceByWorker(ctx, "1001")
	if err != nil || n != 0 {
		t.Errorf("second delete = %d, %v; want 0, nil", n, err)
	}
}
