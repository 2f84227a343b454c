package triage

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/rsilveira/secretary-bot/internal/database"
)

// Registry caches the set of high-priority sender ids so the intake path
// never queries the database for membership. Reads go against an immutable
// snapshot swapped atomically on Refresh.
type Registry struct {
	store    database.Store
	logger   *slog.Logger
	snapshot atomic.Pointer[map[int64]struct{}]
}

// NewRegistry creates a Registry with an empty snapshot. Call Refresh to
// load the stored set.
func NewRegistry(store database.Store, logger *slog.Logger) *Registry {
	r := &Registry{
		store:  store,
		logger: logger.With("component", "registry"),
	}
	empty := make(map[int64]struct{})
	r.snapshot.Store(&empty)
	return r
}

// Refresh reloads the high-priority set from the store and swaps it in.
// On error the previous snapshot stays in effect.
func (r *Registry) Refresh(ctx context.Context) error {
	ids, err := r.store.ListHighPriorityUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh high priority registry: %w", err)
	}

	next := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		next[id] = struct{}{}
	}
	r.snapshot.Store(&next)

	r.logger.DebugContext(ctx, "High priority registry refreshed", "count", len(next))
	return nil
}

// IsMember reports whether senderID is flagged high priority in the current
// snapshot.
func (r *Registry) IsMember(senderID int64) bool {
	snapshot := r.snapshot.Load()
	_, ok := (*snapshot)[senderID]
	return ok
}
