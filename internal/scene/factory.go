// ABOUTME: Factory builds and caches per-home scene dispatchers.
// ABOUTME: Test-mode homes get a simulator; others a webhook client.

package scene

import (
	"log/slog"
	"sync"
	"time"

	"github.com/voicegate/voicegate/internal/store"
)

// Factory produces dispatchers for registered homes. Clients are cached
// per home; a change to the home's controller settings takes effect after
// Invalidate.
type Factory struct {
	mu      sync.Mutex
	clients map[string]Dispatcher
	timeout time.Duration
	logger  *slog.Logger
}

// NewFactory creates an empty dispatcher cache.
func NewFactory(timeout time.Duration, logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{
		clients: make(map[string]Dispatcher),
		timeout: timeout,
		logger:  logger,
	}
}

// For returns the dispatcher for a home, building one on first use.
func (f *Factory) For(h *store.Home) Dispatcher {
	f.mu.Lock()
	defer f.mu.Unlock()

	if d, ok := f.clients[h.ID]; ok {
		return d
	}

	var d Dispatcher
	if h.TestMode {
		d = NewSimulator(f.logger.With("home_id", h.ID))
	} else {
		d = NewWebhookClient(h.ControllerURL, h.WebhookID, f.timeout, f.logger.With("home_id", h.ID))
	}
	f.clients[h.ID] = d
	return d
}

// Invalidate drops the cached dispatcher for a home.
func (f *Factory) Invalidate(homeID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.clients, homeID)
}
