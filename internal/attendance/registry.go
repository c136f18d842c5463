package attendance

import (
	"context"
	"errors"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/kozaktomas/site-attendance/internal/constants"
	"github.com/kozaktomas/site-attendance/internal/database"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NextWorkerID returns max(numeric ids)+1, or FirstWorkerID when no id is numeric.
// Ids at math.MaxInt have no successor and are ignored.
func NextWorkerID(ids []string) string {
	next := constants.FirstWorkerID
	found := false
	highest := 0
	for _, id := range ids {
		n, err := strconv.Atoi(strings.TrimSpace(id))
		if err != nil || n == math.MaxInt {
			continue
		}
		if !found || n > highest {
			highest = n
			found = true
		}
	}
	if found {
		next = highest + 1
	}
	return strconv.Itoa(next)
}

// NormalizeName trims a name and puts it in NFC form.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// RemoveDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// foldName normalizes a name for search (lowercase, no diacritics).
func foldName(name string) string {
	return strings.ToLower(RemoveDiacritics(name))
}

// Register adds a worker under the next sequential id and returns that id.
func (e *Engine) Register(ctx context.Context, name string) (string, error) {
	name = NormalizeName(name)
	if name == "" {
		return "", Validation("Name is required")
	}

	ids, err := e.workers.ListWorkerIDs(ctx)
	if err != nil {
		return "", Internal("list worker ids", err)
	}

	workerID := NextWorkerID(ids)
	if _, err := e.workers.CreateWorker(ctx, workerID, name); err != nil {
		if errors.Is(err, database.ErrDuplicateWorker) {
			return "", Internal("register worker (concurrent registration, try again)", err)
		}
		return "", Internal("register worker", err)
	}

	e.publish(Event{Type: EventWorkerAdded, WorkerID: workerID, WorkerName: name})
	return workerID, nil
}

// Remove deletes a worker's attendance rows and then the worker. Unknown workers and
// workers without rows are not an error.
func (e *Engine) Remove(ctx context.Context, workerID string) error {
	workerID = strings.TrimSpace(workerID)
	if workerID == "" {
		return Validation("Worker ID required")
	}

	if _, err := e.attendance.DeleteAttendanceByWorker(ctx, workerID); err != nil {
		return Internal("delete attendance", err)
	}
	if err := e.workers.DeleteWorker(ctx, workerID); err != nil {
		return Internal("delete worker", err)
	}

	e.publish(Event{Type: EventWorkerRemoved, WorkerID: workerID})
	return nil
}

// Precheck returns the name of a registered worker.
func (e *Engine) Precheck(ctx context.Context, workerID string) (string, error) {
	workerID = strings.TrimSpace(workerID)
	if workerID == "" {
		return "", Validation("Worker ID required")
	}

	w, err := e.workers.GetWorker(ctx, workerID)
	if err != nil {
		return "", Internal("look up worker", err)
	}
	if w == nil {
		return "", NotFound("ID not registered")
	}
	if w.Name == "" {
		return constants.DefaultWorkerName, nil
	}
	return w.Name, nil
}

// Workers lists registered workers. A non-empty query keeps workers whose name contains
// it, ignoring case and diacritics.
func (e *Engine) Workers(ctx context.Context, query string) ([]database.StoredWorker, error) {
	workers, err := e.workers.ListWorkers(ctx)
	if err != nil {
		return nil, Internal("list workers", err)
	}
	if workers == nil {
		workers = []database.StoredWorker{}
	}

	query = foldName(strings.TrimSpace(query))
	if query == "" {
		return workers, nil
	}
	return slices.DeleteFunc(workers, func(w database.StoredWorker) bool {
		return !strings.Contains(foldName(w.Name), query)
	}), nil
}
