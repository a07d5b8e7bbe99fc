package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/deskhub/support-portal/internal/domain"
	"github.com/deskhub/support-portal/internal/store"
)

type fakeTicketRepo struct {
	tickets map[string]*domain.Ticket
	nextID  int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.nextID++
	ticket.ID = string(rune('a' + r.nextID - 1))
	ticket.CreatedAt = time.Now()
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) ListAll(context.Context) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range r.tickets {
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeTicketRepo) ListByUser(_ context.Context, userID string) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range r.tickets {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) SetStatus(_ context.Context, id string, status domain.TicketStatus) error {
	ticket, ok := r.tickets[id]
	if !ok {
		return domain.ErrTicketNotFound
	}
	ticket.Status = status
	return nil
}

func (r *fakeTicketRepo) SetAssignee(_ context.Context, id string, admin *string) error {
	ticket, ok := r.tickets[id]
	if !ok {
		return domain.ErrTicketNotFound
	}
	ticket.AssignedTo = admin
	return nil
}

func (r *fakeTicketRepo) MarkSeen(_ context.Context, id string) error {
	ticket, ok := r.tickets[id]
	if !ok {
		return domain.ErrTicketNotFound
	}
	ticket.SeenByAdmin = true
	return nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tickets[id]; !ok {
		return domain.ErrTicketNotFound
	}
	delete(r.tickets, id)
	return nil
}

func newTicketService(repo *fakeTicketRepo) *TicketService {
	st := store.NewTicketStore(store.Dependencies{TicketRepo: repo})
	return NewTicketService(repo, st)
}

func TestCreateTicketServerControlledFields(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := newTicketService(repo)

	ticket, err := svc.Create(context.Background(), "user-1", CreateTicketInput{
		IssueType:   "Connectivity",
		Device:      "Router X200",
		Description: "WiFi drops every few minutes",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ticket.Status != domain.TicketStatusPending {
		t.Errorf("status = %q, want %q", ticket.Status, domain.TicketStatusPending)
	}
	if ticket.AssignedTo != nil {
		t.Errorf("assigned to = %v, want nil", *ticket.AssignedTo)
	}
	if ticket.SeenByAdmin {
		t.Error("new ticket must start unseen")
	}
	if ticket.UserID != "user-1" {
		t.Errorf("user id = %q, want user-1", ticket.UserID)
	}
}

func TestCreateTicketRequiredFields(t *testing.T) {
	svc := newTicketService(newFakeTicketRepo())

	cases := []struct {
		name  string
		input CreateTicketInput
	}{
		{"missing issue type", CreateTicketInput{Device: "d", Description: "x"}},
		{"missing device", CreateTicketInput{IssueType: "i", Description: "x"}},
		{"missing description", CreateTicketInput{IssueType: "i", Device: "d"}},
		{"blank description", CreateTicketInput{IssueType: "i", Device: "d", Description: "   "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), "user-1", tc.input); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestGetForUserEnforcesOwnership(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := newTicketService(repo)

	ticket, err := svc.Create(context.Background(), "owner", CreateTicketInput{
		IssueType: "Hardware", Device: "Laptop", Description: "Screen flicker",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.GetForUser(context.Background(), "owner", ticket.ID); err != nil {
		t.Errorf("owner read: %v", err)
	}
	if _, err := svc.GetForUser(context.Background(), "intruder", ticket.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign read err = %v, want ErrForbidden", err)
	}
	if _, err := svc.GetForUser(context.Background(), "owner", "missing"); !errors.Is(err, domain.ErrTicketNotFound) {
		t.Errorf("missing read err = %v, want ErrTicketNotFound", err)
	}
}

func TestSetStatusRejectsUnknownValues(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := newTicketService(repo)

	ticket, err := svc.Create(context.Background(), "owner", CreateTicketInput{
		IssueType: "Software", Device: "Phone", Description: "App crash",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.SetStatus(context.Background(), ticket.ID, "Resolved"); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Errorf("err = %v, want ErrInvalidStatus", err)
	}
	if err := svc.SetStatus(context.Background(), ticket.ID, domain.TicketStatusCompleted); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	got, _ := repo.GetByID(context.Background(), ticket.ID)
	if got.Status != domain.TicketStatusCompleted {
		t.Errorf("status = %q, want %q", got.Status, domain.TicketStatusCompleted)
	}
}
