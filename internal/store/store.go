// Package store is the write side of the ticket collection: single-document
// field patches and deletes against Postgres, each followed by a change
// notification on Redis so every live view reloads a fresh snapshot.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deskhub/support-portal/internal/domain"
	"github.com/deskhub/support-portal/internal/events"
	"github.com/deskhub/support-portal/internal/observability"
	"github.com/deskhub/support-portal/internal/repository"
)

// ChangePublisher broadcasts that the ticket collection changed. Delivery is
// best effort; a missed notification only delays the next snapshot.
type ChangePublisher interface {
	PublishChange(ctx context.Context) error
}

// TicketStore coordinates ticket writes. It satisfies the live package's
// Mutator and SeenMarker contracts.
type TicketStore struct {
	tickets    repository.TicketRepository
	publisher  ChangePublisher
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// Dependencies bundles collaborators for the store.
type Dependencies struct {
	TicketRepo repository.TicketRepository
	Publisher  ChangePublisher
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewTicketStore constructs the store.
func NewTicketStore(deps Dependencies) *TicketStore {
	return &TicketStore{
		tickets:    deps.TicketRepo,
		publisher:  deps.Publisher,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// Create inserts a new ticket. The store assigns the id and creation
// timestamp; the ticket starts Pending, unassigned and unseen.
func (s *TicketStore) Create(ctx context.Context, ticket *domain.Ticket) error {
	ticket.Status = domain.TicketStatusPending
	ticket.AssignedTo = nil
	ticket.SeenByAdmin = false

	if err := s.tickets.Create(ctx, ticket); err != nil {
		s.record("create", true)
		return err
	}
	s.record("create", false)
	s.changed(ctx)
	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  ticket.UserID,
		Payload: events.TicketCreatedPayload{
			IssueType: ticket.IssueType,
			Device:    ticket.Device,
			UserID:    ticket.UserID,
		},
	})
	return nil
}

// SetStatus patches the status field of one ticket. Only enumerated status
// values are ever written.
func (s *TicketStore) SetStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	if !status.Valid() {
		return domain.ErrInvalidStatus
	}
	if err := s.tickets.SetStatus(ctx, id, status); err != nil {
		s.record("set_status", true)
		return err
	}
	s.record("set_status", false)
	s.changed(ctx)
	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: id,
		Payload:  events.TicketStatusChangedPayload{NewStatus: status},
	})
	return nil
}

// Assign patches the assignee field of one ticket. Nil clears the
// assignment; an empty string is stored literally.
func (s *TicketStore) Assign(ctx context.Context, id string, admin *string) error {
	if err := s.tickets.SetAssignee(ctx, id, admin); err != nil {
		s.record("assign", true)
		return err
	}
	s.record("assign", false)
	s.changed(ctx)
	s.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: id,
		Payload:  events.TicketAssignedPayload{AssignedTo: admin},
	})
	return nil
}

// MarkSeen sets the seen-by-admin flag. There is no write path that clears
// the flag, so it is monotonic per ticket.
func (s *TicketStore) MarkSeen(ctx context.Context, id string) error {
	if err := s.tickets.MarkSeen(ctx, id); err != nil {
		s.record("mark_seen", true)
		return err
	}
	s.record("mark_seen", false)
	s.changed(ctx)
	s.publish(ctx, events.Event{Type: events.EventTicketSeen, TicketID: id})
	return nil
}

// Delete removes one ticket.
func (s *TicketStore) Delete(ctx context.Context, id string) error {
	if err := s.tickets.Delete(ctx, id); err != nil {
		s.record("delete", true)
		return err
	}
	s.record("delete", false)
	s.changed(ctx)
	s.publish(ctx, events.Event{Type: events.EventTicketDeleted, TicketID: id})
	return nil
}

func (s *TicketStore) changed(ctx context.Context) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishChange(ctx); err != nil && s.logger != nil {
		s.logger.Warn("change notification failed", zap.Error(err))
	}
}

func (s *TicketStore) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func (s *TicketStore) record(op string, failed bool) {
	if s.metrics != nil {
		s.metrics.RecordWrite(op, failed)
	}
}
