package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/site-attendance/internal/ai"
	"github.com/kozaktomas/site-attendance/internal/attendance"
	"github.com/kozaktomas/site-attendance/internal/config"
	"github.com/kozaktomas/site-attendance/internal/database/mock"
	"github.com/kozaktomas/site-attendance/internal/storage"
)

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.Local)

const testDate = "2025-03-14"

var testFrame = "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("frame-bytes"))

// stubClassifier returns a canned reply
type stubClassifier struct {
	reply string
	err   error
	usage ai.Usage
}

func (s *stubClassifier) Name() string       { return "stub" }
func (s *stubClassifier) GetUsage() ai.Usage { return s.usage }
func (s *stubClassifier) Classify(ctx context.Context, jpeg []byte) (string, error) {
	return s.reply, s.err
}

// testEnv bundles an engine with the mocks behind it
type testEnv struct {
	engine     *attendance.Engine
	workers    *mock.MockWorkerRepository
	attendance *mock.MockAttendanceRepository
	objects    *storage.Memory
	classifier *stubClassifier
}

// newTestEnv creates an engine over in-memory collaborators with a fixed "today"
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		workers:    mock.NewMockWorkerRepository(),
		attendance: mock.NewMockAttendanceRepository(),
		objects:    storage.NewMemory(),
		classifier: &stubClassifier{reply: "PPE_OK"},
	}

	var tick time.Duration
	env.attendance.Now = func() time.Time {
		tick += time.Second
		return testNow.Add(tick)
	}

	engine, err := attendance.NewEngine(attendance.Options{
		Workers:        env.workers,
		Attendance:     env.attendance,
		Objects:        env.objects,
		Classifier:     env.classifier,
		VisionTimeout:  time.Second,
		StorageTimeout: time.Second,
		Now:            func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	env.engine = engine
	return env
}

// testConfig creates a minimal config for testing
func testConfig() *config.Config {
	return &config.Config{
		Gemini: config.GeminiConfig{APIKey: "test-key"},
	}
}

// jsonRequest creates a request with a JSON body
func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
