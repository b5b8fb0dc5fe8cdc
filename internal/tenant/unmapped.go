// ABOUTME: In-memory tracker for caller ids that resolved to no home.
// ABOUTME: Lets operators see who tried to connect before creating mappings.

package tenant

import (
	"sort"
	"sync"
	"time"
)

// UnmappedCaller records a caller id the resolver could not place.
type UnmappedCaller struct {
	CallerID  string    `json:"caller_id"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	Attempts  int       `json:"attempts"`
}

// UnmappedTracker accumulates unresolvable caller ids in memory. The set
// resets on restart, which is fine: it exists to surface pending setup
// work, not as an audit log.
type UnmappedTracker struct {
	mu      sync.Mutex
	callers map[string]*UnmappedCaller
	now     func() time.Time
}

// NewUnmappedTracker creates an empty tracker.
func NewUnmappedTracker() *UnmappedTracker {
	return &UnmappedTracker{
		callers: make(map[string]*UnmappedCaller),
		now:     time.Now,
	}
}

// Record notes a failed resolution for callerID.
func (t *UnmappedTracker) Record(callerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if c, ok := t.callers[callerID]; ok {
		c.LastSeen = now
		c.Attempts++
		return
	}
	t.callers[callerID] = &UnmappedCaller{
		CallerID:  callerID,
		FirstSeen: now,
		LastSeen:  now,
		Attempts:  1,
	}
}

// List returns all tracked callers, most recently seen first.
func (t *UnmappedTracker) List() []UnmappedCaller {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]UnmappedCaller, 0, len(t.callers))
	for _, c := range t.callers {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastSeen.After(out[j].LastSeen)
	})
	return out
}

// Remove drops a caller from the tracker, typically after an operator
// creates a mapping for it.
func (t *UnmappedTracker) Remove(callerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.callers, callerID)
}

// Clear empties the tracker.
func (t *UnmappedTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.callers = make(map[string]*UnmappedCaller)
}

// Len reports the number of tracked callers.
func (t *UnmappedTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.callers)
}
