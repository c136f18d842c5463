package attendance

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"
	"time"

	"github.com/kozaktomas/site-attendance/internal/ai"
	"github.com/kozaktomas/site-attendance/internal/database/mock"
	"github.com/kozaktomas/site-attendance/internal/storage"
)

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.Local)

const testDate = "2025-03-14"

// testFrame is a valid data URL; its bytes are not a real JPEG, which the engine does not need.
var testFrame = "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("frame-bytes"))

// stubClassifier returns a canned reply and records what it was asked.
type stubClassifier struct {
	mu     sync.Mutex
	reply  string
	err    error
	block  bool
	frames [][]byte
}

func (s *stubClassifier) Name() string       { return "stub" }
func (s *stubClassifier) GetUsage() ai.Usage { return ai.Usage{} }
func (s *stubClassifier) Classify(ctx context.Context, jpeg []byte) (string, error) {
	s.mu.Lock()
	s.frames = append(s.frames, jpeg)
	s.mu.Unlock()
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.reply, s.err
}

func (s *stubClassifier) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

// recordingListener collects published events.
type recordingListener struct {
	mu     sync.Mutex
	events []Event
}

func (l *recordingListener) HandleEvent(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *recordingListener) all() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event(nil), l.events...)
}

type testEnv struct {
	engine     *Engine
	workers    *mock.MockWorkerRepository
	attendance *mock.MockAttendanceRepository
	objects    *uploadRecorder
	classifier *stubClassifier
	listener   *recordingListener
}

// uploadRecorder wraps the memory store and remembers every uploaded key.
type uploadRecorder struct {
	*storage.Memory
	mu       sync.Mutex
	uploaded []string
}

func (u *uploadRecorder) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	u.mu.Lock()
	u.uploaded = append(u.uploaded, key)
	u.mu.Unlock()
	return u.Memory.Upload(ctx, key, data, contentType)
}

func (u *uploadRecorder) uploads() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.uploaded...)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		workers:    mock.NewMockWorkerRepository(),
		attendance: mock.NewMockAttendanceRepository(),
		objects:    &uploadRecorder{Memory: storage.NewMemory()},
		classifier: &stubClassifier{reply: "PPE_OK"},
		listener:   &recordingListener{},
	}

	// Each insert gets a distinct, increasing timestamp.
	var tick time.Duration
	env.attendance.Now = func() time.Time {
		tick += time.Second
		return testNow.Add(tick)
	}

	engine, err := NewEngine(Options{
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
	engine.AddListener(env.listener)
	env.engine = engine
	return env
}

func assertKind(t *testing.T, err error, want Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := KindOf(err); got != want {
		t.Errorf("expected %s error, got %s (%v)", want, got, err)
	}
}
