package relay

import (
	"sync"
	"time"
)

// dedupRetention is how long a processed event id is remembered.
const dedupRetention = time.Hour

// DedupGuard is a time-windowed set of already-processed event ids.
// Each relay direction consults it before any side effect; the two
// inbound streams have disjoint id spaces, so a single guard serves both.
type DedupGuard struct {
	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

func NewDedupGuard() *DedupGuard {
	return newDedupGuard(time.Now)
}

func newDedupGuard(now func() time.Time) *DedupGuard {
	return &DedupGuard{
		seen: make(map[string]time.Time),
		now:  now,
	}
}

// SeenAndRecord reports whether eventID was already recorded inside the
// retention window, recording it on first sight. Lookup and insert happen
// in one critical section. An empty id is never deduplicated: every such
// event is processed, a deliberate permissive fallback.
func (g *DedupGuard) SeenAndRecord(eventID string) bool {
	if eventID == "" {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.seen[eventID]; ok {
		return true
	}

	now := g.now()
	g.seen[eventID] = now

	// Best-effort sweep of expired entries, co-located with insertion
	// rather than running on a timer. Boundary behavior is not exact.
	cutoff := now.Add(-dedupRetention)
	for id, t := range g.seen {
		if t.Before(cutoff) {
			delete(g.seen, id)
		}
	}

	return false
}

// Record marks eventID processed without reporting prior state. Used after
// a successful delivery; idempotent with the SeenAndRecord insert.
func (g *DedupGuard) Record(eventID string) {
	if eventID == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seen[eventID] = g.now()
}
