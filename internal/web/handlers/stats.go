package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/kozaktomas/site-attendance/internal/attendance"
	"github.com/kozaktomas/site-attendance/internal/constants"
)

type cachedStats struct {
	data      *attendance.Stats
	expiresAt time.Time
}

// statsCache holds computed daily stats per date with expiry. The generation
// counter moves on every invalidate, so a result computed before a write is never stored.
type statsCache struct {
	mu         sync.RWMutex
	entries    map[string]cachedStats
	generation uint64
	now        func() time.Time
}

func (c *statsCache) get(date string) (*attendance.Stats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[date]
	if !ok || c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.data, true
}

// snapshot returns the current generation; pass it to set after computing.
func (c *statsCache) snapshot() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// set stores data unless the cache was invalidated since gen was taken.
func (c *statsCache) set(gen uint64, date string, data *attendance.Stats) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return false
	}
	if c.entries == nil {
		c.entries = make(map[string]cachedStats)
	}
	c.entries[date] = cachedStats{data: data, expiresAt: c.now().Add(constants.StatsCacheTTL)}
	return true
}

func (c *statsCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.generation++
}

// StatsHandler handles the daily statistics endpoint. It implements attendance.Listener
// so saved records and registry changes clear the cache.
type StatsHandler struct {
	engine *attendance.Engine
	cache  statsCache
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(engine *attendance.Engine) *StatsHandler {
	return &StatsHandler{
		engine: engine,
		cache:  statsCache{now: time.Now},
	}
}

// InvalidateCache clears the cached stats so the next request recomputes them
func (h *StatsHandler) InvalidateCache() {
	h.cache.invalidate()
}

// HandleEvent clears the cache on every engine event.
func (h *StatsHandler) HandleEvent(attendance.Event) {
	h.InvalidateCache()
}

// Get returns present and absent counts for a date (default today).
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.engine.Today()
	}

	if cached, ok := h.cache.get(date); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	gen := h.cache.snapshot()
	stats, err := h.engine.DailyStats(r.Context(), date)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			log.Printf("Computing stats for %s failed: %v", sanitizeForLog(date), err)
		}
		respondError(w, status, err.Error())
		return
	}

	h.cache.set(gen, date, stats)
	respondJSON(w, http.StatusOK, stats)
}
