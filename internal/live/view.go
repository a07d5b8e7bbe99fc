// Package live holds the admin portal's realtime ticket-list logic: a
// push-updated mirror of the ticket collection, the filter projection over
// it, the multi-select bulk mutation controller and the unread-notification
// tracker. All writes go to the backing store and are observed back through
// the next feed snapshot; nothing in this package mutates the cache directly.
package live

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/deskhub/support-portal/internal/domain"
)

// Feed produces full replacement snapshots of the ticket collection,
// ordered by creation time descending. Reconnection policy belongs to the
// feed implementation; consumers only see snapshots.
type Feed interface {
	Subscribe(ctx context.Context) (Subscription, error)
}

// Subscription is a live snapshot stream. The Snapshots channel is closed
// after Close or when the feed terminates.
type Subscription interface {
	Snapshots() <-chan []domain.Ticket
	Close()
}

// Counts are the aggregates recomputed on every snapshot apply.
type Counts struct {
	Total      int
	Pending    int
	InProgress int
	Completed  int
	Unread     int
}

// View is the in-memory mirror of the ticket collection. It owns its cache
// exclusively: the only mutation path is applying a feed snapshot, and reads
// hand out copies.
type View struct {
	feed   Feed
	logger *zap.Logger

	mu      sync.RWMutex
	tickets []domain.Ticket
	index   map[string]int
	counts  Counts
	seq     uint64
	ready   bool

	sub      Subscription
	done     chan struct{}
	stopOnce sync.Once
}

// NewView constructs a view over the given feed. Call Start to begin
// receiving snapshots and Stop to release the subscription.
func NewView(feed Feed, logger *zap.Logger) *View {
	return &View{
		feed:   feed,
		logger: logger,
		index:  make(map[string]int),
	}
}

// Start acquires the feed subscription and begins applying snapshots.
func (v *View) Start(ctx context.Context) error {
	sub, err := v.feed.Subscribe(ctx)
	if err != nil {
		return err
	}
	v.sub = sub
	v.done = make(chan struct{})
	go v.run(sub)
	return nil
}

// Stop releases the subscription and waits for the apply loop to exit, so
// no snapshot is applied after Stop returns.
func (v *View) Stop() {
	v.stopOnce.Do(func() {
		if v.sub == nil {
			return
		}
		v.sub.Close()
		<-v.done
	})
}

func (v *View) run(sub Subscription) {
	defer close(v.done)
	for snapshot := range sub.Snapshots() {
		v.apply(snapshot)
	}
	if v.logger != nil {
		v.logger.Info("ticket feed subscription ended")
	}
}

// apply atomically replaces the cached list with the snapshot and recomputes
// aggregates. Snapshots are authoritative; a re-delivered snapshot applies
// cleanly (last-applied-wins, no merging).
func (v *View) apply(snapshot []domain.Ticket) {
	tickets := make([]domain.Ticket, len(snapshot))
	copy(tickets, snapshot)

	index := make(map[string]int, len(tickets))
	var counts Counts
	counts.Total = len(tickets)
	for i, t := range tickets {
		index[t.ID] = i
		switch t.Status {
		case domain.TicketStatusPending:
			counts.Pending++
		case domain.TicketStatusInProgress:
			counts.InProgress++
		case domain.TicketStatusCompleted:
			counts.Completed++
		}
		if !t.SeenByAdmin {
			counts.Unread++
		}
	}

	v.mu.Lock()
	v.tickets = tickets
	v.index = index
	v.counts = counts
	v.seq++
	v.ready = true
	v.mu.Unlock()
}

// Tickets returns a copy of the current list, newest first.
func (v *View) Tickets() []domain.Ticket {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]domain.Ticket, len(v.tickets))
	copy(out, v.tickets)
	return out
}

// Get looks up a single ticket in the cache.
func (v *View) Get(id string) (domain.Ticket, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	i, ok := v.index[id]
	if !ok {
		return domain.Ticket{}, false
	}
	return v.tickets[i], true
}

// Counts returns the aggregates for the current snapshot.
func (v *View) Counts() Counts {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.counts
}

// Unread returns the tickets not yet seen by an admin, newest first.
func (v *View) Unread() []domain.Ticket {
	v.mu.RLock()
	defer v.mu.RUnlock()
	var out []domain.Ticket
	for _, t := range v.tickets {
		if !t.SeenByAdmin {
			out = append(out, t)
		}
	}
	return out
}

// Seq returns the number of snapshots applied so far.
func (v *View) Seq() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.seq
}

// Ready reports whether at least one snapshot has been applied. Before that
// the view serves an empty, stale state.
func (v *View) Ready() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.ready
}
