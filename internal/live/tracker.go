package live

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/deskhub/support-portal/internal/domain"
)

// SeenMarker flags a single ticket as seen by the admin side. The flag is
// monotonic: marking only ever sets it, never clears it.
type SeenMarker interface {
	MarkSeen(ctx context.Context, id string) error
}

// Tracker drives the admin notification panel: a two-state machine
// (closed/open) whose closed-to-open transition sweeps the tickets that were
// unread at that instant. Tickets arriving while the panel is open stay
// unread until the next opening. The badge count is always derived live from
// the view, panel open or not.
type Tracker struct {
	view   *View
	marker SeenMarker
	logger *zap.Logger

	mu   sync.Mutex
	open bool
}

// NewTracker builds a tracker in the closed state.
func NewTracker(view *View, marker SeenMarker, logger *zap.Logger) *Tracker {
	return &Tracker{view: view, marker: marker, logger: logger}
}

// IsOpen reports the panel state.
func (t *Tracker) IsOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}

// UnreadCount is the live badge value.
func (t *Tracker) UnreadCount() int {
	return t.view.Counts().Unread
}

// Recent returns the newest tickets for the panel, up to limit.
func (t *Tracker) Recent(limit int) []domain.Ticket {
	tickets := t.view.Tickets()
	if limit > 0 && len(tickets) > limit {
		tickets = tickets[:limit]
	}
	return tickets
}

// Toggle flips the panel. Opening snapshots the unread subset at that moment
// and issues one independent mark-seen write per ticket in it; the writes are
// not retried and a failure leaves that ticket unread for the next opening.
// Closing has no side effect.
func (t *Tracker) Toggle(ctx context.Context) (bool, BulkResult) {
	t.mu.Lock()
	t.open = !t.open
	opening := t.open
	t.mu.Unlock()

	if !opening {
		return false, BulkResult{}
	}

	unread := t.view.Unread()
	ids := make([]string, 0, len(unread))
	for _, ticket := range unread {
		ids = append(ids, ticket.ID)
	}

	res := fanOut(ctx, ids, func(ctx context.Context, id string) error {
		return t.marker.MarkSeen(ctx, id)
	})
	if t.logger != nil && (len(res.Failed) > 0 || len(res.Applied) > 0) {
		t.logger.Info("notification sweep finished",
			zap.Int("marked", len(res.Applied)),
			zap.Int("skipped", len(res.Skipped)),
			zap.Int("failed", len(res.Failed)),
		)
	}
	return true, res
}
