// ABOUTME: In-memory keyed store for pending voice challenges.
// ABOUTME: One pending challenge per tenant key, safe for concurrent use.

package challenge

import (
	"sync"
	"time"
)

// Challenge is a pending authentication attempt for one tenant. The zero
// attempt count means no verification has been tried yet.
type Challenge struct {
	TenantKey string
	Phrase    string
	Intent    string
	CreatedAt time.Time
	Attempts  int
}

// Store maps tenant keys to pending challenges. It is a dumb keyed slot:
// expiry and attempt policy live in the Validator. All methods are safe for
// concurrent use; pending challenges are process-local and intentionally
// lost on restart (a restart just forces re-issuance).
type Store struct {
	mu      sync.RWMutex
	pending map[string]*Challenge
}

// NewStore creates an empty challenge store.
func NewStore() *Store {
	return &Store{pending: make(map[string]*Challenge)}
}

// Put stores a challenge under its tenant key, replacing any prior
// challenge for that key.
func (s *Store) Put(c *Challenge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[c.TenantKey] = c
}

// Get returns a copy of the pending challenge for the key, or false if
// none exists. Callers mutate the copy and write it back via Put.
func (s *Store) Get(tenantKey string) (Challenge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.pending[tenantKey]
	if !ok {
		return Challenge{}, false
	}
	return *c, true
}

// Has reports whether a challenge is pending for the key.
func (s *Store) Has(tenantKey string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.pending[tenantKey]
	return ok
}

// Delete removes the pending challenge for the key. It is a no-op if none
// exists.
func (s *Store) Delete(tenantKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, tenantKey)
}

// Snapshot returns a copy of all pending challenges keyed by tenant.
func (s *Store) Snapshot() map[string]Challenge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Challenge, len(s.pending))
	for k, c := range s.pending {
		out[k] = *c
	}
	return out
}

// Len returns the number of pending challenges.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pending)
}
