package service

import (
	"context"
	"errors"
	"strings"

	"github.com/deskhub/support-portal/internal/domain"
	"github.com/deskhub/support-portal/internal/repository"
	"github.com/deskhub/support-portal/internal/store"
)

// ErrForbidden indicates the caller does not own the requested ticket.
var ErrForbidden = errors.New("forbidden")

// CreateTicketInput carries the required submission fields.
type CreateTicketInput struct {
	IssueType   string
	Device      string
	Description string
}

// TicketService is the write and owner-scoped read surface for support
// requests. All admin writes go through the ticket store so that change
// notifications and events fire consistently.
type TicketService struct {
	repo  repository.TicketRepository
	store *store.TicketStore
}

// NewTicketService builds the service.
func NewTicketService(repo repository.TicketRepository, st *store.TicketStore) *TicketService {
	return &TicketService{repo: repo, store: st}
}

// Create submits a new support request for the owner. Status, assignment
// and seen state are server-controlled and ignored if supplied.
func (s *TicketService) Create(ctx context.Context, ownerID string, input CreateTicketInput) (*domain.Ticket, error) {
	input.IssueType = strings.TrimSpace(input.IssueType)
	input.Device = strings.TrimSpace(input.Device)
	input.Description = strings.TrimSpace(input.Description)
	if input.IssueType == "" || input.Device == "" || input.Description == "" {
		return nil, errors.New("issue type, device and description are required")
	}

	ticket := &domain.Ticket{
		IssueType:   input.IssueType,
		Device:      input.Device,
		Description: input.Description,
		UserID:      ownerID,
	}
	if err := s.store.Create(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// ListForUser returns the owner's requests, newest first.
func (s *TicketService) ListForUser(ctx context.Context, ownerID string) ([]domain.Ticket, error) {
	return s.repo.ListByUser(ctx, ownerID)
}

// GetForUser fetches one request, enforcing ownership.
func (s *TicketService) GetForUser(ctx context.Context, ownerID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.repo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.UserID != ownerID {
		return nil, ErrForbidden
	}
	return ticket, nil
}

// Get fetches one request without an ownership check, for admin use.
func (s *TicketService) Get(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.repo.GetByID(ctx, ticketID)
}

// SetStatus updates a single ticket's workflow status.
func (s *TicketService) SetStatus(ctx context.Context, ticketID string, status domain.TicketStatus) error {
	return s.store.SetStatus(ctx, ticketID, status)
}

// Assign sets or clears a single ticket's assignee. A nil admin clears the
// assignment, which is distinct from an empty name.
func (s *TicketService) Assign(ctx context.Context, ticketID string, admin *string) error {
	return s.store.Assign(ctx, ticketID, admin)
}

// Delete removes a single ticket.
func (s *TicketService) Delete(ctx context.Context, ticketID string) error {
	return s.store.Delete(ctx, ticketID)
}
