// Package attendance decides attendance from PPE checks, keeps the worker registry and
// aggregates daily statistics.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/kozaktomas/site-attendance/internal/ai"
	"github.com/kozaktomas/site-attendance/internal/constants"
	"github.com/kozaktomas/site-attendance/internal/database"
	"github.com/kozaktomas/site-attendance/internal/frame"
	"github.com/kozaktomas/site-attendance/internal/storage"
)

// EventType names what changed.
type EventType string

const (
	EventAttendance    EventType = "attendance"
	EventWorkerAdded   EventType = "worker_added"
	EventWorkerRemoved EventType = "worker_removed"
)

// Event is published to listeners after a successful write.
type Event struct {
	Type       EventType                  `json:"type"`
	Record     *database.StoredAttendance `json:"record,omitempty"`
	WorkerID   string                     `json:"worker_id"`
	WorkerName string                     `json:"worker_name,omitempty"`
}

// Listener receives events. HandleEvent must not block.
type Listener interface {
	HandleEvent(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

func (f ListenerFunc) HandleEvent(e Event) { f(e) }

// Options holds the collaborators of an Engine.
type Options struct {
	Workers    database.WorkerWriter
	Attendance database.AttendanceWriter
	Objects    storage.ObjectStore
	Classifier ai.Classifier // optional; Verify fails without it

	VisionTimeout  time.Duration
	StorageTimeout time.Duration

	// Now returns the current time; "today" is its local date. Defaults to time.Now.
	Now func() time.Time
}

// Engine runs attendance operations against its collaborators.
type Engine struct {
	workers        database.WorkerWriter
	attendance     database.AttendanceWriter
	objects        storage.ObjectStore
	classifier     ai.Classifier
	visionTimeout  time.Duration
	storageTimeout time.Duration
	now            func() time.Time

	mu        sync.RWMutex
	listeners []Listener
}

// NewEngine creates an engine. Workers, Attendance and Objects are required.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Workers == nil || opts.Attendance == nil {
		return nil, errors.New("worker and attendance repositories are required")
	}
	if opts.Objects == nil {
		return nil, errors.New("object store is required")
	}

	e := &Engine{
		workers:        opts.Workers,
		attendance:     opts.Attendance,
		objects:        opts.Objects,
		classifier:     opts.Classifier,
		visionTimeout:  opts.VisionTimeout,
		storageTimeout: opts.StorageTimeout,
		now:            opts.Now,
	}
	if e.visionTimeout <= 0 {
		e.visionTimeout = constants.DefaultVisionTimeout
	}
	if e.storageTimeout <= 0 {
		e.storageTimeout = constants.DefaultStorageTimeout
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e, nil
}

// AddListener registers a listener for saved records and registry changes.
func (e *Engine) AddListener(l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

func (e *Engine) publish(ev Event) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, l := range e.listeners {
		l.HandleEvent(ev)
	}
}

// Classifier returns the configured classifier, or nil.
func (e *Engine) Classifier() ai.Classifier {
	return e.classifier
}

// Today returns the current local date as YYYY-MM-DD.
func (e *Engine) Today() string {
	return e.now().Format(database.DateLayout)
}

// Decision is the result of an automatic check.
type Decision struct {
	Outcome    ai.Outcome
	WorkerName string
	Missing    string
	Message    string // set for ai.OutcomeRetry
	Record     *database.StoredAttendance
}

// Verify runs the automatic check for one frame: the frame is staged in the object
// store, classified once, removed again, and the outcome recorded for today. A RETRY
// outcome writes nothing.
func (e *Engine) Verify(ctx context.Context, workerID, image string) (*Decision, error) {
	workerID = strings.TrimSpace(workerID)
	if workerID == "" {
		return nil, Validation("Worker ID required")
	}
	if e.classifier == nil {
		return nil, Internal("verification", errors.New("no vision classifier configured"))
	}

	data, err := frame.DecodeDataURL(image)
	if err != nil {
		return nil, Internal("decode frame", err)
	}

	key := frame.ObjectKey(frame.ModeAuto, workerID)
	if err := e.upload(ctx, key, data); err != nil {
		return nil, Internal("upload frame", err)
	}

	visionCtx, cancel := context.WithTimeout(ctx, e.visionTimeout)
	reply := ai.Verify(visionCtx, e.classifier, data)
	cancel()

	e.remove(ctx, key)

	verdict := ai.ParseReply(reply)
	if verdict.Outcome == ai.OutcomeRetry {
		return &Decision{Outcome: ai.OutcomeRetry, Message: verdict.Reason}, nil
	}

	rec := database.StoredAttendance{
		WorkerID:         workerID,
		AttendanceStatus: database.StatusPresent,
		PPEStatus:        database.PPEPassed,
		PPEMissingItems:  verdict.Missing,
		Date:             e.Today(),
	}
	if verdict.Outcome == ai.OutcomeAbsent {
		rec.AttendanceStatus = database.StatusAbsent
		rec.PPEStatus = database.PPEFailed
	}
	if err := e.attendance.InsertAttendance(ctx, &rec); err != nil {
		return nil, Internal("save attendance", err)
	}

	name, err := e.workerName(ctx, workerID)
	if err != nil {
		return nil, Internal("look up worker", err)
	}

	e.publish(Event{Type: EventAttendance, Record: &rec, WorkerID: workerID, WorkerName: name})

	return &Decision{
		Outcome:    verdict.Outcome,
		WorkerName: name,
		Missing:    verdict.Missing,
		Record:     &rec,
	}, nil
}

// ManualUpload records a supervisor-confirmed PRESENT for today. The frame is staged and
// removed again without classification; removal runs even when the write fails.
func (e *Engine) ManualUpload(ctx context.Context, workerID, image string) (*database.StoredAttendance, error) {
	workerID = strings.TrimSpace(workerID)
	if workerID == "" {
		return nil, Validation("Worker ID required")
	}

	data, err := frame.DecodeDataURL(image)
	if err != nil {
		return nil, Internal("decode frame", err)
	}

	key := frame.ObjectKey(frame.ModeManual, workerID)
	if err := e.upload(ctx, key, data); err != nil {
		return nil, Internal("upload frame", err)
	}

	rec := database.StoredAttendance{
		WorkerID:         workerID,
		AttendanceStatus: database.StatusPresent,
		PPEStatus:        database.PPEManualVerified,
		PPEMissingItems:  constants.ManualConfirmation,
		Date:             e.Today(),
	}
	insertErr := e.attendance.InsertAttendance(ctx, &rec)
	e.remove(ctx, key)
	if insertErr != nil {
		return nil, Internal("save attendance", insertErr)
	}

	e.publishRecord(ctx, &rec)
	return &rec, nil
}

// AdminOverride records a status chosen by an operator. An empty status means PRESENT
// and an empty date means today.
func (e *Engine) AdminOverride(ctx context.Context, workerID, status, date string) (*database.StoredAttendance, error) {
	workerID = strings.TrimSpace(workerID)
	if workerID == "" {
		return nil, Validation("Worker ID required")
	}

	st := database.AttendanceStatus(strings.TrimSpace(status))
	if st == "" {
		st = database.StatusPresent
	}
	if !st.Valid() {
		return nil, Validation("status must be %s or %s", database.StatusPresent, database.StatusAbsent)
	}

	day, err := e.resolveDate(date)
	if err != nil {
		return nil, err
	}

	rec := database.StoredAttendance{
		WorkerID:         workerID,
		AttendanceStatus: st,
		PPEStatus:        database.PPEAdminOverride,
		PPEMissingItems:  fmt.Sprintf(constants.AdminOverrideFormat, st),
		Date:             day,
	}
	if err := e.attendance.InsertAttendance(ctx, &rec); err != nil {
		return nil, Internal("save attendance", err)
	}

	e.publishRecord(ctx, &rec)
	return &rec, nil
}

// publishRecord notifies listeners of a saved row. A failed name lookup only degrades
// the event.
func (e *Engine) publishRecord(ctx context.Context, rec *database.StoredAttendance) {
	name, err := e.workerName(ctx, rec.WorkerID)
	if err != nil {
		log.Printf("Failed to look up worker %s for event: %v", rec.WorkerID, err)
		name = constants.DefaultWorkerName
	}
	e.publish(Event{Type: EventAttendance, Record: rec, WorkerID: rec.WorkerID, WorkerName: name})
}

// workerName returns the registered name, or the default name for unknown workers.
func (e *Engine) workerName(ctx context.Context, workerID string) (string, error) {
	w, err := e.workers.GetWorker(ctx, workerID)
	if err != nil {
		return "", err
	}
	if w == nil || w.Name == "" {
		return constants.DefaultWorkerName, nil
	}
	return w.Name, nil
}

func (e *Engine) upload(ctx context.Context, key string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, e.storageTimeout)
	defer cancel()
	return e.objects.Upload(ctx, key, data, constants.FrameContentType)
}

// remove deletes a staged frame; failures are logged and otherwise ignored.
func (e *Engine) remove(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.storageTimeout)
	defer cancel()
	if err := e.objects.Remove(ctx, key); err != nil {
		log.Printf("Failed to remove staged frame %s: %v", key, err)
	}
}
