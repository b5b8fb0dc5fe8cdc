// ABOUTME: Resolver maps home ids and caller ids to registered homes.
// ABOUTME: Unmapped callers fall back to the default home and are tracked.

package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/voicegate/voicegate/internal/store"
)

// ErrNotFound is returned when an identifier resolves to no registered home.
var ErrNotFound = errors.New("tenant not found")

// Resolver turns request identifiers into homes.
type Resolver struct {
	homes         store.HomeStore
	mappings      store.MappingStore
	defaultHomeID string
	unmapped      *UnmappedTracker
	logger        *slog.Logger
}

// NewResolver creates a resolver backed by the given registry stores.
// defaultHomeID may be empty, in which case unmapped callers are rejected
// instead of falling back.
func NewResolver(homes store.HomeStore, mappings store.MappingStore, defaultHomeID string, unmapped *UnmappedTracker, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		homes:         homes,
		mappings:      mappings,
		defaultHomeID: defaultHomeID,
		unmapped:      unmapped,
		logger:        logger.With("component", "tenant"),
	}
}

// ResolveHome looks up a home by its id. Inactive homes resolve to
// ErrNotFound so a disabled home stops accepting challenges immediately.
func (r *Resolver) ResolveHome(ctx context.Context, homeID string) (*store.Home, error) {
	if homeID == "" {
		return nil, ErrNotFound
	}
	h, err := r.homes.GetHome(ctx, homeID)
	if err != nil {
		if errors.Is(err, store.ErrHomeNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("resolving home %s: %w", homeID, err)
	}
	if !h.Active {
		return nil, ErrNotFound
	}
	return h, nil
}

// ResolveCaller resolves an opaque caller id through the caller mapping
// table. Unmapped callers fall back to the default home; callers that
// cannot be resolved at all are recorded in the unmapped tracker.
func (r *Resolver) ResolveCaller(ctx context.Context, callerID string) (*store.Home, error) {
	if callerID == "" {
		return nil, ErrNotFound
	}

	m, err := r.mappings.GetCallerMapping(ctx, callerID)
	switch {
	case err == nil:
		return r.ResolveHome(ctx, m.HomeID)
	case errors.Is(err, store.ErrMappingNotFound):
		// fall through to default
	default:
		return nil, fmt.Errorf("resolving caller: %w", err)
	}

	if r.defaultHomeID != "" {
		h, err := r.ResolveHome(ctx, r.defaultHomeID)
		if err == nil {
			return h, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	if r.unmapped != nil {
		r.unmapped.Record(callerID)
	}
	r.logger.Warn("unmapped caller", "caller_id", truncateCallerID(callerID))
	return nil, ErrNotFound
}

// truncateCallerID shortens long platform ids for log lines.
func truncateCallerID(id string) string {
	const max = 40
	if len(id) <= max {
		return id
	}
	return id[:max] + "..."
}
