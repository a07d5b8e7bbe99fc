package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deskhub/support-portal/internal/domain"
)

// TicketRepository encapsulates ticket persistence. Mutations are single-row
// field patches: the portal never rewrites a whole ticket after creation, it
// patches status, assignee or the seen flag individually.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Ticket, error)
	SetStatus(ctx context.Context, id string, status domain.TicketStatus) error
	SetAssignee(ctx context.Context, id string, admin *string) error
	MarkSeen(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, issue_type, device, description, status, assigned_to, seen_by_admin, created_at, user_id`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO support_requests (issue_type, device, description, status, assigned_to, seen_by_admin, user_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		ticket.IssueType,
		ticket.Device,
		ticket.Description,
		ticket.Status,
		ticket.AssignedTo,
		ticket.SeenByAdmin,
		ticket.UserID,
	).Scan(&ticket.ID, &ticket.CreatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM support_requests WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.IssueType,
		&ticket.Device,
		&ticket.Description,
		&ticket.Status,
		&ticket.AssignedTo,
		&ticket.SeenByAdmin,
		&ticket.CreatedAt,
		&ticket.UserID,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM support_requests ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListByUser(ctx context.Context, userID string) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM support_requests WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) SetStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	const query = `UPDATE support_requests SET status=$1 WHERE id=$2`
	return r.patch(ctx, query, status, id)
}

func (r *ticketRepository) SetAssignee(ctx context.Context, id string, admin *string) error {
	const query = `UPDATE support_requests SET assigned_to=$1 WHERE id=$2`
	return r.patch(ctx, query, admin, id)
}

// MarkSeen only ever sets the flag to true, which keeps seen_by_admin
// monotonic: there is no write path that clears it.
func (r *ticketRepository) MarkSeen(ctx context.Context, id string) error {
	const query = `UPDATE support_requests SET seen_by_admin=TRUE WHERE id=$1`
	return r.patch(ctx, query, id)
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM support_requests WHERE id=$1`
	return r.patch(ctx, query, id)
}

func (r *ticketRepository) patch(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.IssueType,
			&ticket.Device,
			&ticket.Description,
			&ticket.Status,
			&ticket.AssignedTo,
			&ticket.SeenByAdmin,
			&ticket.CreatedAt,
			&ticket.UserID,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
