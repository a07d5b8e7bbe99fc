package live

import (
	"strings"

	"github.com/deskhub/support-portal/internal/domain"
)

// StatusFilter narrows a list to one status. FilterAll matches every status.
type StatusFilter string

// FilterAll is the sentinel meaning "no status filter".
const FilterAll StatusFilter = "All"

// Valid reports whether f is the sentinel or one of the ticket statuses.
func (f StatusFilter) Valid() bool {
	return f == FilterAll || domain.TicketStatus(f).Valid()
}

// Filter returns the tickets whose issue type or device contains the query
// (case-insensitive) and whose status matches the filter. The result is an
// order-preserving subsequence of list; the derivation is pure and is simply
// recomputed whenever list, query or status change.
func Filter(list []domain.Ticket, query string, status StatusFilter) []domain.Ticket {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.Ticket, 0, len(list))
	for _, t := range list {
		if !strings.Contains(strings.ToLower(t.IssueType), q) &&
			!strings.Contains(strings.ToLower(t.Device), q) {
			continue
		}
		if status != FilterAll && t.Status != domain.TicketStatus(status) {
			continue
		}
		out = append(out, t)
	}
	return out
}
