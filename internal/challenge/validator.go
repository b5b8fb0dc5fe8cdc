// ABOUTME: Challenge validation state machine with expiry and attempt limits.
// ABOUTME: Owns issue/verify/cancel/status plus a passive reaper goroutine.

package challenge

import (
	"log/slog"
	"sync"
	"time"
)

// Default policy values, overridable via NewValidator.
const (
	DefaultExpiry      = 60 * time.Second
	DefaultMaxAttempts = 3
)

// Reason classifies why a verification was denied.
type Reason string

const (
	ReasonNoChallenge Reason = "no_challenge"
	ReasonExpired     Reason = "expired"
	ReasonMaxAttempts Reason = "max_attempts"
	ReasonMismatch    Reason = "mismatch"
)

// Outcome is the structured result of a verify call. Denials are data, not
// errors: every outcome is locally recoverable by issuing a new challenge.
type Outcome struct {
	Approved bool
	Intent   string // set on approval, passed through from Issue
	Reason   Reason // set on denial
	// AttemptsRemaining is how many verification attempts are left.
	// Only meaningful when Reason is ReasonMismatch.
	AttemptsRemaining int
}

// PendingInfo is a read-only snapshot of one pending challenge.
type PendingInfo struct {
	Intent         string
	Attempts       int
	ElapsedSeconds float64
	Expired        bool
}

// Validator is the challenge state machine. A tenant moves from no pending
// challenge to pending on Issue, and back on approval, cancellation,
// expiry, or attempt exhaustion.
//
// The validator serializes Issue/Verify/Cancel per instance so the
// read-increment-compare-write sequence inside Verify is atomic. Contention
// is low (one in-flight challenge per home), so a single lock is fine.
type Validator struct {
	mu          sync.Mutex
	store       *Store
	phrases     *PhraseGenerator
	expiry      time.Duration
	maxAttempts int
	logger      *slog.Logger

	now func() time.Time

	done   chan struct{}
	closed bool
}

// NewValidator creates a validator over the given store and phrase
// generator. Non-positive expiry or maxAttempts fall back to the defaults.
// A background goroutine reaps expired challenges until Close is called;
// reaping is an optimization only, correctness comes from the expiry check
// in Verify.
func NewValidator(store *Store, phrases *PhraseGenerator, expiry time.Duration, maxAttempts int, logger *slog.Logger) *Validator {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}
	v := &Validator{
		store:       store,
		phrases:     phrases,
		expiry:      expiry,
		maxAttempts: maxAttempts,
		logger:      logger.With("component", "challenge"),
		now:         time.Now,
		done:        make(chan struct{}),
	}
	go v.reapLoop()
	return v
}

// Expiry returns the configured challenge expiry window.
func (v *Validator) Expiry() time.Duration { return v.expiry }

// MaxAttempts returns the configured verification attempt budget.
func (v *Validator) MaxAttempts() int { return v.maxAttempts }

// Issue generates a new challenge phrase for the tenant and stores it,
// silently replacing any prior pending challenge for the same key. The
// returned phrase is what the caller must speak back.
func (v *Validator) Issue(tenantKey, intent string) string {
	v.mu.Lock()
	defer v.mu.Unlock()

	phrase := v.phrases.Generate()
	v.store.Put(&Challenge{
		TenantKey: tenantKey,
		Phrase:    phrase,
		Intent:    intent,
		CreatedAt: v.now(),
	})

	v.logger.Info("challenge issued", "tenant", tenantKey, "intent", intent)
	return phrase
}

// Verify checks a spoken transcript against the tenant's pending challenge.
// The checks are strictly ordered: missing challenge, then expiry, then
// attempt budget, then phrase comparison. An expired challenge reports
// expired even if it would also have exceeded the attempt budget or
// matched. Attempts increment only when a live, unexpired challenge exists.
func (v *Validator) Verify(tenantKey, transcript string) Outcome {
	v.mu.Lock()
	defer v.mu.Unlock()

	c, ok := v.store.Get(tenantKey)
	if !ok {
		return Outcome{Reason: ReasonNoChallenge}
	}

	if v.now().Sub(c.CreatedAt) > v.expiry {
		v.store.Delete(tenantKey)
		v.logger.Info("challenge expired", "tenant", tenantKey)
		return Outcome{Reason: ReasonExpired}
	}

	c.Attempts++
	if c.Attempts > v.maxAttempts {
		v.store.Delete(tenantKey)
		v.logger.Info("challenge attempts exhausted", "tenant", tenantKey)
		return Outcome{Reason: ReasonMaxAttempts}
	}

	if Canonical(transcript) == Canonical(c.Phrase) {
		v.store.Delete(tenantKey)
		v.logger.Info("challenge approved", "tenant", tenantKey, "intent", c.Intent)
		return Outcome{Approved: true, Intent: c.Intent}
	}

	remaining := v.maxAttempts - c.Attempts
	if remaining <= 0 {
		// The wrong answer consumed the final attempt.
		v.store.Delete(tenantKey)
		v.logger.Info("challenge attempts exhausted", "tenant", tenantKey)
		return Outcome{Reason: ReasonMaxAttempts}
	}

	v.store.Put(&c)
	v.logger.Info("challenge mismatch", "tenant", tenantKey, "attempts_remaining", remaining)
	return Outcome{Reason: ReasonMismatch, AttemptsRemaining: remaining}
}

// Cancel removes any pending challenge for the tenant. It is idempotent
// and always safe to call.
func (v *Validator) Cancel(tenantKey string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.store.Delete(tenantKey)
}

// Status returns a read-only snapshot of the tenant's pending challenge,
// or false if none exists. It never mutates state: an expired challenge is
// reported with Expired set rather than deleted.
func (v *Validator) Status(tenantKey string) (PendingInfo, bool) {
	c, ok := v.store.Get(tenantKey)
	if !ok {
		return PendingInfo{}, false
	}
	return v.pendingInfo(c), true
}

// StatusAll returns snapshots of every pending challenge keyed by tenant.
func (v *Validator) StatusAll() map[string]PendingInfo {
	snapshot := v.store.Snapshot()
	out := make(map[string]PendingInfo, len(snapshot))
	for key, c := range snapshot {
		out[key] = v.pendingInfo(c)
	}
	return out
}

func (v *Validator) pendingInfo(c Challenge) PendingInfo {
	elapsed := v.now().Sub(c.CreatedAt)
	return PendingInfo{
		Intent:         c.Intent,
		Attempts:       c.Attempts,
		ElapsedSeconds: elapsed.Seconds(),
		Expired:        elapsed > v.expiry,
	}
}

// reapLoop periodically removes expired challenges so abandoned tenants do
// not accumulate. Runs until Close.
func (v *Validator) reapLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := v.reap(); n > 0 {
				v.logger.Debug("reaped expired challenges", "count", n)
			}
		case <-v.done:
			return
		}
	}
}

// reap deletes all expired challenges and returns how many were removed.
func (v *Validator) reap() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	var n int
	for key, c := range v.store.Snapshot() {
		if now.Sub(c.CreatedAt) > v.expiry {
			v.store.Delete(key)
			n++
		}
	}
	return n
}

// Close stops the reaper goroutine. Safe to call multiple times.
func (v *Validator) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.closed {
		close(v.done)
		v.closed = true
	}
}
