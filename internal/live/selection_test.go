package live

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/deskhub/support-portal/internal/domain"
)

// fakeMutator records writes and simulates missing tickets and failures.
type fakeMutator struct {
	mu       sync.Mutex
	statuses map[string]domain.TicketStatus
	assigned map[string]*string
	deleted  []string
	missing  map[string]bool
	failing  map[string]error
}

func newFakeMutator() *fakeMutator {
	return &fakeMutator{
		statuses: make(map[string]domain.TicketStatus),
		assigned: make(map[string]*string),
		missing:  make(map[string]bool),
		failing:  make(map[string]error),
	}
}

func (m *fakeMutator) outcome(id string) error {
	if m.missing[id] {
		return domain.ErrTicketNotFound
	}
	if err := m.failing[id]; err != nil {
		return err
	}
	return nil
}

func (m *fakeMutator) SetStatus(_ context.Context, id string, status domain.TicketStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.outcome(id); err != nil {
		return err
	}
	m.statuses[id] = status
	return nil
}

func (m *fakeMutator) Assign(_ context.Context, id string, admin *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.outcome(id); err != nil {
		return err
	}
	m.assigned[id] = admin
	return nil
}

func (m *fakeMutator) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.outcome(id); err != nil {
		return err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func alwaysConfirm() Confirmer {
	return ConfirmerFunc(func(string) bool { return true })
}

func neverConfirm() Confirmer {
	return ConfirmerFunc(func(string) bool { return false })
}

func TestToggle(t *testing.T) {
	ctl := NewController(newFakeMutator(), nil)

	if !ctl.Toggle("a") {
		t.Error("first toggle should select")
	}
	if ctl.Toggle("a") {
		t.Error("second toggle should deselect")
	}
	if ctl.Count() != 0 {
		t.Errorf("Count = %d, want 0", ctl.Count())
	}

	ctl.Toggle("b")
	ctl.Toggle("a")
	if got := ctl.Selected(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Selected = %v, want [a b]", got)
	}
}

func TestBulkSetStatusKeepsSelection(t *testing.T) {
	mutator := newFakeMutator()
	ctl := NewController(mutator, nil)
	ctl.Toggle("1")
	ctl.Toggle("2")

	res, err := ctl.BulkSetStatus(context.Background(), domain.TicketStatusInProgress)
	if err != nil {
		t.Fatalf("BulkSetStatus() error = %v", err)
	}
	if !reflect.DeepEqual(res.Applied, []string{"1", "2"}) {
		t.Errorf("Applied = %v, want [1 2]", res.Applied)
	}
	for _, id := range []string{"1", "2"} {
		if mutator.statuses[id] != domain.TicketStatusInProgress {
			t.Errorf("ticket %s status = %q, want In Progress", id, mutator.statuses[id])
		}
	}
	// The selection is not cleared by status updates.
	if got := ctl.Selected(); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Errorf("Selected after bulk = %v, want [1 2]", got)
	}
}

func TestBulkSetStatusRejectsUnknownValue(t *testing.T) {
	ctl := NewController(newFakeMutator(), nil)
	ctl.Toggle("1")

	if _, err := ctl.BulkSetStatus(context.Background(), "Archived"); err == nil {
		t.Fatal("expected error for status outside the enumeration")
	}
}

func TestBulkSetStatusPartialFailure(t *testing.T) {
	mutator := newFakeMutator()
	mutator.failing["2"] = errors.New("write failed")
	ctl := NewController(mutator, nil)
	for _, id := range []string{"1", "2", "3"} {
		ctl.Toggle(id)
	}

	res, err := ctl.BulkSetStatus(context.Background(), domain.TicketStatusCompleted)
	if err != nil {
		t.Fatalf("BulkSetStatus() error = %v", err)
	}
	if !reflect.DeepEqual(res.Applied, []string{"1", "3"}) {
		t.Errorf("Applied = %v, want [1 3]", res.Applied)
	}
	if _, ok := res.Failed["2"]; !ok {
		t.Error("expected ticket 2 in Failed")
	}
	// No rollback: 1 and 3 keep the new status.
	if mutator.statuses["1"] != domain.TicketStatusCompleted || mutator.statuses["3"] != domain.TicketStatusCompleted {
		t.Error("successful writes must not be rolled back")
	}
}

func TestBulkAssignDistinguishesNilAndEmpty(t *testing.T) {
	mutator := newFakeMutator()
	ctl := NewController(mutator, nil)
	ctl.Toggle("1")

	empty := ""
	ctl.BulkAssign(context.Background(), &empty)
	if got := mutator.assigned["1"]; got == nil || *got != "" {
		t.Errorf("assigned = %v, want pointer to empty string", got)
	}

	ctl.BulkAssign(context.Background(), nil)
	if got := mutator.assigned["1"]; got != nil {
		t.Errorf("assigned = %v, want nil (unassigned)", got)
	}
}

func TestBulkDeletePartialFailure(t *testing.T) {
	mutator := newFakeMutator()
	mutator.failing["B"] = errors.New("write failed")
	ctl := NewController(mutator, nil)
	for _, id := range []string{"A", "B", "C"} {
		ctl.Toggle(id)
	}

	res, performed := ctl.BulkDelete(context.Background(), alwaysConfirm())
	if !performed {
		t.Fatal("confirmed bulk delete should run")
	}
	if !reflect.DeepEqual(res.Applied, []string{"A", "C"}) {
		t.Errorf("Applied = %v, want [A C]", res.Applied)
	}
	if _, ok := res.Failed["B"]; !ok {
		t.Error("expected B in Failed")
	}
	// A and C are gone from the store and from the selection; the failed id stays.
	if got := ctl.Selected(); !reflect.DeepEqual(got, []string{"B"}) {
		t.Errorf("Selected after bulk delete = %v, want [B]", got)
	}
}

func TestBulkDeleteDeclined(t *testing.T) {
	mutator := newFakeMutator()
	ctl := NewController(mutator, nil)
	ctl.Toggle("1")

	res, performed := ctl.BulkDelete(context.Background(), neverConfirm())
	if performed {
		t.Error("declined confirmation must be a no-op")
	}
	if len(res.Applied) != 0 || len(mutator.deleted) != 0 {
		t.Error("no writes may be issued when confirmation is declined")
	}
	if ctl.Count() != 1 {
		t.Error("selection must survive a declined confirmation")
	}
}

func TestBulkDeleteEmptySelection(t *testing.T) {
	ctl := NewController(newFakeMutator(), nil)
	if _, performed := ctl.BulkDelete(context.Background(), alwaysConfirm()); performed {
		t.Error("empty selection should be a no-op before confirmation")
	}
}

func TestBulkDeleteSkipsStaleReferences(t *testing.T) {
	mutator := newFakeMutator()
	mutator.missing["gone"] = true
	ctl := NewController(mutator, nil)
	ctl.Toggle("gone")
	ctl.Toggle("live")

	res, performed := ctl.BulkDelete(context.Background(), alwaysConfirm())
	if !performed {
		t.Fatal("confirmed bulk delete should run")
	}
	if !reflect.DeepEqual(res.Skipped, []string{"gone"}) {
		t.Errorf("Skipped = %v, want [gone]", res.Skipped)
	}
	if len(res.Failed) != 0 {
		t.Errorf("stale references must not be failures: %v", res.Failed)
	}
	if ctl.Count() != 0 {
		t.Errorf("stale and deleted ids should leave the selection, got %v", ctl.Selected())
	}
}

func TestBulkDeleteClosesDetailView(t *testing.T) {
	mutator := newFakeMutator()
	ctl := NewController(mutator, nil)
	ctl.Toggle("1")
	ctl.OpenDetail("1")

	ctl.BulkDelete(context.Background(), alwaysConfirm())
	if _, open := ctl.Detail(); open {
		t.Error("detail view must close when its ticket is deleted")
	}
}

func TestBulkDeleteKeepsUnrelatedDetailView(t *testing.T) {
	mutator := newFakeMutator()
	ctl := NewController(mutator, nil)
	ctl.Toggle("1")
	ctl.OpenDetail("other")

	ctl.BulkDelete(context.Background(), alwaysConfirm())
	if id, open := ctl.Detail(); !open || id != "other" {
		t.Errorf("unrelated detail view must stay open, got (%q, %v)", id, open)
	}
}

func TestDeleteOne(t *testing.T) {
	mutator := newFakeMutator()
	ctl := NewController(mutator, nil)
	ctl.Toggle("1")
	ctl.Toggle("2")
	ctl.OpenDetail("1")

	performed, err := ctl.DeleteOne(context.Background(), "1", alwaysConfirm())
	if err != nil || !performed {
		t.Fatalf("DeleteOne() = (%v, %v)", performed, err)
	}
	if !reflect.DeepEqual(mutator.deleted, []string{"1"}) {
		t.Errorf("deleted = %v, want [1]", mutator.deleted)
	}
	if got := ctl.Selected(); !reflect.DeepEqual(got, []string{"2"}) {
		t.Errorf("Selected = %v, want [2]", got)
	}
	if _, open := ctl.Detail(); open {
		t.Error("detail view must close when its ticket is deleted")
	}
}

func TestDeleteOneDeclined(t *testing.T) {
	mutator := newFakeMutator()
	ctl := NewController(mutator, nil)
	ctl.Toggle("1")

	performed, err := ctl.DeleteOne(context.Background(), "1", neverConfirm())
	if err != nil {
		t.Fatalf("declined delete returned error: %v", err)
	}
	if performed {
		t.Error("declined confirmation must be a no-op")
	}
	if len(mutator.deleted) != 0 {
		t.Error("no delete may be issued when confirmation is declined")
	}
}

func TestDeleteOneStaleReference(t *testing.T) {
	mutator := newFakeMutator()
	mutator.missing["gone"] = true
	ctl := NewController(mutator, nil)
	ctl.Toggle("gone")

	performed, err := ctl.DeleteOne(context.Background(), "gone", alwaysConfirm())
	if err != nil {
		t.Fatalf("stale reference must be a silent no-op, got %v", err)
	}
	if !performed {
		t.Error("confirmed delete counts as performed even when the ticket is gone")
	}
	if ctl.Count() != 0 {
		t.Error("stale id should leave the selection")
	}
}

func TestDeleteOneWriteFailureKeepsSelection(t *testing.T) {
	mutator := newFakeMutator()
	mutator.failing["1"] = errors.New("write failed")
	ctl := NewController(mutator, nil)
	ctl.Toggle("1")

	_, err := ctl.DeleteOne(context.Background(), "1", alwaysConfirm())
	if err == nil {
		t.Fatal("expected write failure to surface")
	}
	if ctl.Count() != 1 {
		t.Error("failed delete must keep the id selected for retry")
	}
}
