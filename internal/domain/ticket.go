package domain

import (
	"errors"
	"time"
)

// TicketStatus enumerates lifecycle states for support requests. The stored
// values match what the admin portal displays; customer-facing views label
// the terminal state "Resolved" (see CustomerStatusLabel).
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "Pending"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusCompleted  TicketStatus = "Completed"
)

// StatusLabelResolved is the customer-facing alias for TicketStatusCompleted.
const StatusLabelResolved = "Resolved"

// ErrTicketNotFound reports a mutation or read against a ticket id that no
// longer exists. Bulk operations treat it as a silent skip.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrInvalidStatus reports an attempt to write a status outside the
// enumerated values.
var ErrInvalidStatus = errors.New("invalid ticket status")

// Valid reports whether s is one of the enumerated statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusPending, TicketStatusInProgress, TicketStatusCompleted:
		return true
	}
	return false
}

// CustomerStatusLabel maps a stored status to the label customers see.
func CustomerStatusLabel(s TicketStatus) string {
	if s == TicketStatusCompleted {
		return StatusLabelResolved
	}
	return string(s)
}

// Ticket is the support-request record. AssignedTo is nil when unassigned,
// which is distinct from an empty-string assignment.
type Ticket struct {
	ID          string
	IssueType   string
	Device      string
	Description string
	Status      TicketStatus
	AssignedTo  *string
	SeenByAdmin bool
	CreatedAt   time.Time
	UserID      string
}
