package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kozaktomas/site-attendance/internal/attendance"
	"github.com/kozaktomas/site-attendance/internal/database"
	"github.com/kozaktomas/site-attendance/internal/database/mock"
	"github.com/kozaktomas/site-attendance/internal/storage"
)

func TestStatsHandler_Get_LatestWins(t *testing.T) {
	env := newTestEnv(t)
	env.workers.AddWorker("1001", "Jana")
	env.workers.AddWorker("1002", "Petr")
	env.workers.AddWorker("1003", "Eva")
	env.attendance.AddRow(database.StoredAttendance{WorkerID: "1001", AttendanceStatus: database.StatusPresent, Date: testDate, CreatedAt: testNow})
	env.attendance.AddRow(database.StoredAttendance{WorkerID: "1001", AttendanceStatus: database.StatusAbsent, Date: testDate, CreatedAt: testNow.Add(time.Minute)})
	env.attendance.AddRow(database.StoredAttendance{WorkerID: "1002", AttendanceStatus: database.StatusPresent, Date: testDate, CreatedAt: testNow})
	handler := NewStatsHandler(env.engine)

	recorder := httptest.NewRecorder()
	handler.Get(recorder, httptest.NewRequest("GET", "/api/stats", nil))

	assertStatusCode(t, recorder, http.StatusOK)
	var stats attendance.Stats
	parseJSONResponse(t, recorder, &stats)
	want := attendance.Stats{Present: 1, Absent: 1, TotalWorkers: 3, Date: testDate}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestStatsHandler_Get_NoRows(t *testing.T) {
	env := newTestEnv(t)
	env.workers.AddWorker("1001", "Jana")
	handler := NewStatsHandler(env.engine)

	recorder := httptest.NewRecorder()
	handler.Get(recorder, httptest.NewRequest("GET", "/api/stats?date=2025-01-01", nil))

	assertStatusCode(t, recorder, http.StatusOK)
	var stats attendance.Stats
	parseJSONResponse(t, recorder, &stats)
	want := attendance.Stats{Present: 0, Absent: 0, TotalWorkers: 1, Date: "2025-01-01"}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestStatsHandler_Get_InvalidDate(t *testing.T) {
	env := newTestEnv(t)
	handler := NewStatsHandler(env.engine)

	recorder := httptest.NewRecorder()
	handler.Get(recorder, httptest.NewRequest("GET", "/api/stats?date=2025-13-40", nil))

	assertStatusCode(t, recorder, http.StatusBadRequest)
}

func TestStatsHandler_Get_Caching(t *testing.T) {
	env := newTestEnv(t)
	env.workers.AddWorker("1001", "Jana")
	handler := NewStatsHandler(env.engine)

	first := httptest.NewRecorder()
	handler.Get(first, httptest.NewRequest("GET", "/api/stats", nil))
	assertStatusCode(t, first, http.StatusOK)

	// A row written behind the engine's back is not seen until the cache is cleared.
	env.attendance.AddRow(database.StoredAttendance{WorkerID: "1001", AttendanceStatus: database.StatusPresent, Date: testDate, CreatedAt: testNow})

	second := httptest.NewRecorder()
	handler.Get(second, httptest.NewRequest("GET", "/api/stats", nil))
	var cached attendance.Stats
	parseJSONResponse(t, second, &cached)
	if cached.Present != 0 {
		t.Errorf("expected cached present=0, got %d", cached.Present)
	}

	handler.InvalidateCache()

	third := httptest.NewRecorder()
	handler.Get(third, httptest.NewRequest("GET", "/api/stats", nil))
	var fresh attendance.Stats
	parseJSONResponse(t, third, &fresh)
	if fresh.Present != 1 {
		t.Errorf("expected fresh present=1, got %d", fresh.Present)
	}
}

func TestStatsHandler_InvalidatedByEngineEvents(t *testing.T) {
	env := newTestEnv(t)
	handler := NewStatsHandler(env.engine)
	env.engine.AddListener(handler)

	first := httptest.NewRecorder()
	handler.Get(first, httptest.NewRequest("GET", "/api/stats", nil))

	if _, err := env.engine.AdminOverride(t.Context(), "1001", "", ""); err != nil {
		t.Fatalf("AdminOverride failed: %v", err)
	}

	second := httptest.NewRecorder()
	handler.Get(second, httptest.NewRequest("GET", "/api/stats", nil))
	var stats attendance.Stats
	parseJSONResponse(t, second, &stats)
	if stats.Present != 1 {
		t.Errorf("expected present=1 after override, got %d", stats.Present)
	}

	if _, err := env.engine.Register(t.Context(), "Eva"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	third := httptest.NewRecorder()
	handler.Get(third, httptest.NewRequest("GET", "/api/stats", nil))
	parseJSONResponse(t, third, &stats)
	if stats.TotalWorkers != 1 {
		t.Errorf("expected total_workers=1 after registration, got %d", stats.TotalWorkers)
	}
}

func TestStatsCache_Expiry(t *testing.T) {
	now := testNow
	cache := statsCache{now: func() time.Time { return now }}

	cache.set(cache.snapshot(), testDate, &attendance.Stats{Present: 2, Date: testDate})
	if _, ok := cache.get(testDate); !ok {
		t.Fatal("expected cache hit")
	}
	if _, ok := cache.get("2025-03-13"); ok {
		t.Error("expected miss for another date")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := cache.get(testDate); ok {
		t.Error("expected entry to expire")
	}
}

func TestStatsCache_SetAfterInvalidateIsDropped(t *testing.T) {
	cache := statsCache{now: func() time.Time { return testNow }}

	gen := cache.snapshot()
	cache.invalidate()
	if cache.set(gen, testDate, &attendance.Stats{Present: 1, Date: testDate}) {
		t.Error("expected set with an old generation to be rejected")
	}
	if _, ok := cache.get(testDate); ok {
		t.Error("expected no cached entry")
	}

	if !cache.set(cache.snapshot(), testDate, &attendance.Stats{Present: 1, Date: testDate}) {
		t.Error("expected set with the current generation to succeed")
	}
}

// writeDuringListRepository saves a record right after the rows for a date are read.
type writeDuringListRepository struct {
	*mock.MockAttendanceRepository
	afterList func()
}

func (r *writeDuringListRepository) ListAttendanceByDate(ctx context.Context, date string) ([]database.StoredAttendance, error) {
	rows, err := r.MockAttendanceRepository.ListAttendanceByDate(ctx, date)
	if r.afterList != nil {
		hook := r.afterList
		r.afterList = nil
		hook()
	}
	return rows, err
}

func TestStatsHandler_Get_WriteDuringComputeNotCached(t *testing.T) {
	workers := mock.NewMockWorkerRepository()
	workers.AddWorker("1001", "Jana")
	repo := &writeDuringListRepository{MockAttendanceRepository: mock.NewMockAttendanceRepository()}

	engine, err := attendance.NewEngine(attendance.Options{
		Workers:        workers,
		Attendance:     repo,
		Objects:        storage.NewMemory(),
		Classifier:     &stubClassifier{reply: "PPE_OK"},
		VisionTimeout:  time.Second,
		StorageTimeout: time.Second,
		Now:            func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	handler := NewStatsHandler(engine)
	engine.AddListener(handler)

	repo.afterList = func() {
		if _, err := engine.AdminOverride(context.Background(), "1001", "PRESENT", ""); err != nil {
			t.Errorf("AdminOverride failed: %v", err)
		}
	}

	first := httptest.NewRecorder()
	handler.Get(first, httptest.NewRequest("GET", "/api/stats", nil))
	assertStatusCode(t, first, http.StatusOK)

	second := httptest.NewRecorder()
	handler.Get(second, httptest.NewRequest("GET", "/api/stats", nil))
	var stats attendance.Stats
	parseJSONResponse(t, second, &stats)
	if stats.Present != 1 {
		t.Errorf("expected present=1 after a write during the first request, got %d", stats.Present)
	}
}
