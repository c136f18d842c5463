package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kozaktomas/site-attendance/internal/attendance"
	"github.com/kozaktomas/site-attendance/internal/config"
	"github.com/kozaktomas/site-attendance/internal/database/mock"
	"github.com/kozaktomas/site-attendance/internal/live"
	"github.com/kozaktomas/site-attendance/internal/storage"
	"github.com/kozaktomas/site-attendance/internal/web/middleware"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T, secret string) (*Server, *mock.MockWorkerRepository) {
	t.Helper()

	workers := mock.NewMockWorkerRepository()
	engine, err := attendance.NewEngine(attendance.Options{
		Workers:    workers,
		Attendance: mock.NewMockAttendanceRepository(),
		Objects:    storage.NewMemory(),
	})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	cfg := &config.Config{Auth: config.AuthConfig{JWTSecret: secret}}
	hub := live.NewHub(middleware.CheckOrigin())
	engine.AddListener(hub)
	t.Cleanup(hub.Close)

	return NewServer(cfg, engine, hub, 0, "127.0.0.1"), workers
}

func TestServer_HealthIsPublic(t *testing.T) {
	s, _ := newTestServer(t, testSecret)

	recorder := httptest.NewRecorder()
	s.Router().ServeHTTP(recorder, httptest.NewRequest("GET", "/api/health", nil))

	if recorder.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", recorder.Code)
	}
}

func TestServer_AdminRequiresToken(t *testing.T) {
	s, _ := newTestServer(t, testSecret)

	recorder := httptest.NewRecorder()
	s.Router().ServeHTTP(recorder, httptest.NewRequest("GET", "/api/stats", nil))
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got %d", recorder.Code)
	}

	token, err := middleware.IssueAdminToken(testSecret, "office", time.Hour)
	if err != nil {
		t.Fatalf("IssueAdminToken failed: %v", err)
	}
	req := httptest.NewRequest("GET", "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	recorder = httptest.NewRecorder()
	s.Router().ServeHTTP(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Errorf("expected status 200 with token, got %d", recorder.Code)
	}
}

func TestServer_AdminOpenWithoutSecret(t *testing.T) {
	s, _ := newTestServer(t, "")

	recorder := httptest.NewRecorder()
	s.Router().ServeHTTP(recorder, httptest.NewRequest("GET", "/api/workers", nil))

	if recorder.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", recorder.Code)
	}
}

func TestServer_KioskIsPublic(t *testing.T) {
	s, workers := newTestServer(t, testSecret)
	workers.AddWorker("1001", "Jana")

	req := httptest.NewRequest("POST", "/precheck", strings.NewReader(`{"worker_id":"1001"}`))
	recorder := httptest.NewRecorder()
	s.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if !strings.Contains(recorder.Body.String(), `"worker_name":"Jana"`) {
		t.Errorf("unexpected body: %s", recorder.Body.String())
	}
}

func TestServer_Pages(t *testing.T) {
	s, _ := newTestServer(t, testSecret)

	for _, path := range []string{"/", "/admin"} {
		recorder := httptest.NewRecorder()
		s.Router().ServeHTTP(recorder, httptest.NewRequest("GET", path, nil))

		if recorder.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", path, recorder.Code)
		}
		if ct := recorder.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
			t.Errorf("%s: unexpected Content-Type %s", path, ct)
		}
		if recorder.Header().Get("X-Frame-Options") != "DENY" {
			t.Errorf("%s: missing security headers", path)
		}
	}
}

func TestServer_LiveFeedReceivesSavedRecords(t *testing.T) {
	s, _ := newTestServer(t, testSecret)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	token, _ := middleware.IssueAdminToken(testSecret, "panel", time.Hour)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/live?token=" + token

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	// Wait until the hub has registered the client before publishing.
	deadline := time.Now().Add(2 * time.Second)
	for s.hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	image := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("frame"))
	body := `{"worker_id":"1001","image":"` + image + `"}`
	resp, err := http.Post(ts.URL+"/manual-upload", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("manual upload failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Event string           `json:"event"`
		Data  attendance.Event `json:"data"`
	}
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("bad payload %s: %v", payload, err)
	}
	if msg.Event != string(attendance.EventAttendance) || msg.Data.WorkerID != "1001" {
		t.Errorf("unexpected message: %s", payload)
	}
}

func TestServer_LiveFeedRequiresToken(t *testing.T) {
	s, _ := newTestServer(t, testSecret)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/live"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected dial to fail without token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 handshake response, got %v", resp)
	}
}
