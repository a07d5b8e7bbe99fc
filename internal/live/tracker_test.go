package live

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/deskhub/support-portal/internal/domain"
)

type fakeMarker struct {
	mu      sync.Mutex
	marked  []string
	failing map[string]error
}

func (m *fakeMarker) MarkSeen(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failing[id]; err != nil {
		return err
	}
	m.marked = append(m.marked, id)
	return nil
}

func (m *fakeMarker) sortedMarked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.marked))
	copy(out, m.marked)
	return out
}

func viewWith(tickets ...domain.Ticket) *View {
	v := NewView(nil, nil)
	v.apply(tickets)
	return v
}

func TestTrackerStartsClosed(t *testing.T) {
	tracker := NewTracker(viewWith(), &fakeMarker{}, nil)
	if tracker.IsOpen() {
		t.Error("tracker must start closed")
	}
}

func TestTrackerOpenSweepsUnreadSnapshot(t *testing.T) {
	view := viewWith(
		domain.Ticket{ID: "1", SeenByAdmin: false, Status: domain.TicketStatusPending},
		domain.Ticket{ID: "2", SeenByAdmin: true, Status: domain.TicketStatusPending},
		domain.Ticket{ID: "3", SeenByAdmin: false, Status: domain.TicketStatusCompleted},
	)
	marker := &fakeMarker{}
	tracker := NewTracker(view, marker, nil)

	open, res := tracker.Toggle(context.Background())
	if !open || !tracker.IsOpen() {
		t.Fatal("first toggle should open the panel")
	}
	if !reflect.DeepEqual(res.Applied, []string{"1", "3"}) {
		t.Errorf("Applied = %v, want [1 3]", res.Applied)
	}
	if got := marker.sortedMarked(); len(got) != 2 {
		t.Errorf("expected exactly one mark-seen write per unread ticket, got %v", got)
	}
}

func TestTrackerCloseHasNoSideEffect(t *testing.T) {
	view := viewWith(domain.Ticket{ID: "1", SeenByAdmin: false, Status: domain.TicketStatusPending})
	marker := &fakeMarker{}
	tracker := NewTracker(view, marker, nil)

	tracker.Toggle(context.Background())
	before := len(marker.sortedMarked())

	open, res := tracker.Toggle(context.Background())
	if open || tracker.IsOpen() {
		t.Error("second toggle should close the panel")
	}
	if len(res.Applied) != 0 || len(marker.sortedMarked()) != before {
		t.Error("closing must not issue writes")
	}
}

func TestTrackerLateArrivalsStayUnread(t *testing.T) {
	view := viewWith(domain.Ticket{ID: "1", SeenByAdmin: false, Status: domain.TicketStatusPending})
	marker := &fakeMarker{}
	tracker := NewTracker(view, marker, nil)

	tracker.Toggle(context.Background())

	// A new submission arrives while the panel is open. The sweep already
	// ran against the snapshot taken at toggle time.
	view.apply([]domain.Ticket{
		{ID: "1", SeenByAdmin: true, Status: domain.TicketStatusPending},
		{ID: "2", SeenByAdmin: false, Status: domain.TicketStatusPending},
	})

	if got := marker.sortedMarked(); !reflect.DeepEqual(got, []string{"1"}) {
		t.Errorf("marked = %v, want [1]", got)
	}
	if tracker.UnreadCount() != 1 {
		t.Errorf("UnreadCount = %d, want 1 (late arrival stays unread)", tracker.UnreadCount())
	}

	// The next closed-to-open transition picks it up.
	tracker.Toggle(context.Background())
	_, res := tracker.Toggle(context.Background())
	if !reflect.DeepEqual(res.Applied, []string{"2"}) {
		t.Errorf("second sweep Applied = %v, want [2]", res.Applied)
	}
}

func TestTrackerBadgeTracksViewWhileClosed(t *testing.T) {
	view := viewWith()
	tracker := NewTracker(view, &fakeMarker{}, nil)

	if tracker.UnreadCount() != 0 {
		t.Fatalf("UnreadCount = %d, want 0", tracker.UnreadCount())
	}

	view.apply([]domain.Ticket{
		{ID: "1", SeenByAdmin: false, Status: domain.TicketStatusPending},
		{ID: "2", SeenByAdmin: false, Status: domain.TicketStatusPending},
	})
	if tracker.UnreadCount() != 2 {
		t.Errorf("UnreadCount = %d, want 2 while panel closed", tracker.UnreadCount())
	}
}

func TestTrackerSweepFailureLeavesTicketUnread(t *testing.T) {
	view := viewWith(
		domain.Ticket{ID: "1", SeenByAdmin: false, Status: domain.TicketStatusPending},
		domain.Ticket{ID: "2", SeenByAdmin: false, Status: domain.TicketStatusPending},
	)
	marker := &fakeMarker{failing: map[string]error{"2": errors.New("write failed")}}
	tracker := NewTracker(view, marker, nil)

	_, res := tracker.Toggle(context.Background())
	if !reflect.DeepEqual(res.Applied, []string{"1"}) {
		t.Errorf("Applied = %v, want [1]", res.Applied)
	}
	if _, ok := res.Failed["2"]; !ok {
		t.Error("expected failed mark-seen for ticket 2")
	}
	// Not retried here; ticket 2 is swept again on the next opening once
	// the feed has confirmed ticket 1 as seen.
	view.apply([]domain.Ticket{
		{ID: "1", SeenByAdmin: true, Status: domain.TicketStatusPending},
		{ID: "2", SeenByAdmin: false, Status: domain.TicketStatusPending},
	})
	tracker.Toggle(context.Background())
	marker.failing = nil
	_, res = tracker.Toggle(context.Background())
	if !reflect.DeepEqual(res.Applied, []string{"2"}) {
		t.Errorf("retry sweep Applied = %v, want [2]", res.Applied)
	}
}

func TestTrackerRecent(t *testing.T) {
	view := viewWith(
		domain.Ticket{ID: "3", Status: domain.TicketStatusPending},
		domain.Ticket{ID: "2", Status: domain.TicketStatusPending},
		domain.Ticket{ID: "1", Status: domain.TicketStatusPending},
	)
	tracker := NewTracker(view, &fakeMarker{}, nil)

	got := tracker.Recent(2)
	if !reflect.DeepEqual(ids(got), []string{"3", "2"}) {
		t.Errorf("Recent(2) = %v, want [3 2]", ids(got))
	}
	if got := tracker.Recent(10); len(got) != 3 {
		t.Errorf("Recent(10) returned %d tickets, want 3", len(got))
	}
}
