package dto

import (
	"time"

	"github.com/deskhub/support-portal/internal/domain"
	"github.com/deskhub/support-portal/internal/live"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	IssueType   string `json:"issue_type"`
	Device      string `json:"device"`
	Description string `json:"description"`
}

// CustomerTicketResponse is the ticket shape shown on the customer portal.
// Completed tickets are labelled Resolved there.
type CustomerTicketResponse struct {
	ID          string    `json:"id"`
	IssueType   string    `json:"issue_type"`
	Device      string    `json:"device"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewCustomerTicketResponse maps a ticket for customer display.
func NewCustomerTicketResponse(t domain.Ticket) CustomerTicketResponse {
	return CustomerTicketResponse{
		ID:          t.ID,
		IssueType:   t.IssueType,
		Device:      t.Device,
		Description: t.Description,
		Status:      domain.CustomerStatusLabel(t.Status),
		CreatedAt:   t.CreatedAt,
	}
}

// AdminTicketResponse is the ticket shape shown on the admin portal. The
// assignee is omitted entirely when unassigned, which is distinct from an
// assignee stored as an empty string.
type AdminTicketResponse struct {
	ID          string              `json:"id"`
	IssueType   string              `json:"issue_type"`
	Device      string              `json:"device"`
	Description string              `json:"description"`
	Status      domain.TicketStatus `json:"status"`
	AssignedTo  *string             `json:"assigned_to,omitempty"`
	SeenByAdmin bool                `json:"seen_by_admin"`
	CreatedAt   time.Time           `json:"created_at"`
	UserID      string              `json:"user_id"`
	Selected    bool                `json:"selected"`
}

// NewAdminTicketResponse maps a ticket for admin display.
func NewAdminTicketResponse(t domain.Ticket, selected bool) AdminTicketResponse {
	return AdminTicketResponse{
		ID:          t.ID,
		IssueType:   t.IssueType,
		Device:      t.Device,
		Description: t.Description,
		Status:      t.Status,
		AssignedTo:  t.AssignedTo,
		SeenByAdmin: t.SeenByAdmin,
		CreatedAt:   t.CreatedAt,
		UserID:      t.UserID,
		Selected:    selected,
	}
}

// TicketCountsResponse mirrors the live view aggregates.
type TicketCountsResponse struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Unread     int `json:"unread"`
}

// NewTicketCountsResponse maps view aggregates.
func NewTicketCountsResponse(c live.Counts) TicketCountsResponse {
	return TicketCountsResponse{
		Total:      c.Total,
		Pending:    c.Pending,
		InProgress: c.InProgress,
		Completed:  c.Completed,
		Unread:     c.Unread,
	}
}

// AdminTicketListResponse is the live-list payload: filtered rows plus the
// whole-collection aggregates and selection state.
type AdminTicketListResponse struct {
	Tickets       []AdminTicketResponse `json:"tickets"`
	Counts        TicketCountsResponse  `json:"counts"`
	Seq           uint64                `json:"seq"`
	SelectedCount int                   `json:"selected_count"`
}

// BulkStatusRequest payload.
type BulkStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// BulkAssignRequest payload. A null admin clears the assignment.
type BulkAssignRequest struct {
	Admin *string `json:"admin"`
}

// BulkDeleteRequest payload. Deletes only proceed when confirmed.
type BulkDeleteRequest struct {
	Confirm bool `json:"confirm"`
}

// ToggleSelectionRequest payload.
type ToggleSelectionRequest struct {
	TicketID string `json:"ticket_id"`
}

// BulkResultResponse reports per-ticket outcomes of a bulk batch.
type BulkResultResponse struct {
	Applied []string          `json:"applied"`
	Skipped []string          `json:"skipped"`
	Failed  map[string]string `json:"failed"`
}

// NewBulkResultResponse maps a bulk outcome.
func NewBulkResultResponse(r live.BulkResult) BulkResultResponse {
	out := BulkResultResponse{
		Applied: r.Applied,
		Skipped: r.Skipped,
		Failed:  map[string]string{},
	}
	if out.Applied == nil {
		out.Applied = []string{}
	}
	if out.Skipped == nil {
		out.Skipped = []string{}
	}
	for id, err := range r.Failed {
		out.Failed[id] = err.Error()
	}
	return out
}

// NotificationsResponse is the dashboard bell payload.
type NotificationsResponse struct {
	Open   bool                  `json:"open"`
	Unread int                   `json:"unread"`
	Recent []AdminTicketResponse `json:"recent"`
}
