package live

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/deskhub/support-portal/internal/domain"
)

type fakeSubscription struct {
	ch        chan []domain.Ticket
	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeSubscription() *fakeSubscription {
	return &fakeSubscription{
		ch:     make(chan []domain.Ticket),
		closed: make(chan struct{}),
	}
}

func (s *fakeSubscription) Snapshots() <-chan []domain.Ticket { return s.ch }

func (s *fakeSubscription) Close() {
	s.closeOnce.Do(func() {
		close(s.ch)
		close(s.closed)
	})
}

type fakeFeed struct {
	sub *fakeSubscription
	err error
}

func (f *fakeFeed) Subscribe(_ context.Context) (Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sub, nil
}

func waitForSeq(t *testing.T, v *View, want uint64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if v.Seq() >= want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("view did not reach seq %d (at %d)", want, v.Seq())
}

func TestViewAppliesSnapshotsAndAggregates(t *testing.T) {
	sub := newFakeSubscription()
	view := NewView(&fakeFeed{sub: sub}, nil)
	if err := view.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer view.Stop()

	if view.Ready() {
		t.Fatal("view should not be ready before the first snapshot")
	}

	sub.ch <- []domain.Ticket{
		{ID: "1", Status: domain.TicketStatusPending, SeenByAdmin: false},
		{ID: "2", Status: domain.TicketStatusInProgress, SeenByAdmin: true},
		{ID: "3", Status: domain.TicketStatusCompleted, SeenByAdmin: false},
	}
	waitForSeq(t, view, 1)

	if !view.Ready() {
		t.Error("view should be ready after a snapshot")
	}
	counts := view.Counts()
	if counts.Total != 3 || counts.Pending != 1 || counts.InProgress != 1 || counts.Completed != 1 {
		t.Errorf("unexpected counts: %+v", counts)
	}
	if counts.Unread != 2 {
		t.Errorf("Unread = %d, want 2", counts.Unread)
	}

	if _, ok := view.Get("2"); !ok {
		t.Error("Get(2) should find the ticket")
	}
	if _, ok := view.Get("99"); ok {
		t.Error("Get(99) should not find a ticket")
	}
}

func TestViewSnapshotIsAuthoritativeReplacement(t *testing.T) {
	sub := newFakeSubscription()
	view := NewView(&fakeFeed{sub: sub}, nil)
	if err := view.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer view.Stop()

	sub.ch <- []domain.Ticket{
		{ID: "1", Status: domain.TicketStatusPending},
		{ID: "2", Status: domain.TicketStatusPending},
	}
	waitForSeq(t, view, 1)

	// The store re-delivers a full snapshot; the cache must be replaced, not merged.
	sub.ch <- []domain.Ticket{
		{ID: "2", Status: domain.TicketStatusCompleted},
	}
	waitForSeq(t, view, 2)

	tickets := view.Tickets()
	if len(tickets) != 1 || tickets[0].ID != "2" {
		t.Fatalf("expected replacement snapshot [2], got %v", ids(tickets))
	}
	if tickets[0].Status != domain.TicketStatusCompleted {
		t.Errorf("status = %q, want Completed", tickets[0].Status)
	}
	if got, ok := view.Get("1"); ok {
		t.Errorf("deleted ticket still cached: %+v", got)
	}
}

func TestViewUnreadCountMatchesList(t *testing.T) {
	sub := newFakeSubscription()
	view := NewView(&fakeFeed{sub: sub}, nil)
	if err := view.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer view.Stop()

	snapshots := [][]domain.Ticket{
		{
			{ID: "1", SeenByAdmin: false, Status: domain.TicketStatusPending},
			{ID: "2", SeenByAdmin: false, Status: domain.TicketStatusPending},
		},
		{
			{ID: "1", SeenByAdmin: true, Status: domain.TicketStatusPending},
			{ID: "2", SeenByAdmin: false, Status: domain.TicketStatusPending},
			{ID: "3", SeenByAdmin: false, Status: domain.TicketStatusPending},
		},
		{},
	}

	for i, snapshot := range snapshots {
		sub.ch <- snapshot
		waitForSeq(t, view, uint64(i+1))

		want := 0
		for _, ticket := range snapshot {
			if !ticket.SeenByAdmin {
				want++
			}
		}
		if got := view.Counts().Unread; got != want {
			t.Errorf("snapshot %d: Unread = %d, want %d", i, got, want)
		}
		if got := len(view.Unread()); got != want {
			t.Errorf("snapshot %d: len(Unread()) = %d, want %d", i, got, want)
		}
	}
}

func TestViewStopReleasesSubscription(t *testing.T) {
	sub := newFakeSubscription()
	view := NewView(&fakeFeed{sub: sub}, nil)
	if err := view.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	sub.ch <- []domain.Ticket{{ID: "1", Status: domain.TicketStatusPending}}
	waitForSeq(t, view, 1)

	view.Stop()

	select {
	case <-sub.closed:
	default:
		t.Fatal("Stop() did not close the subscription")
	}

	// No snapshot may be applied after Stop returns.
	if got := view.Seq(); got != 1 {
		t.Errorf("Seq after Stop = %d, want 1", got)
	}

	// Stop is idempotent.
	view.Stop()
}

func TestViewTicketsReturnsCopy(t *testing.T) {
	sub := newFakeSubscription()
	view := NewView(&fakeFeed{sub: sub}, nil)
	if err := view.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer view.Stop()

	sub.ch <- []domain.Ticket{{ID: "1", IssueType: "Wifi", Status: domain.TicketStatusPending}}
	waitForSeq(t, view, 1)

	got := view.Tickets()
	got[0].IssueType = "tampered"

	if fresh := view.Tickets(); fresh[0].IssueType != "Wifi" {
		t.Error("caller mutation leaked into the cached list")
	}
}
