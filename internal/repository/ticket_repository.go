package repository

import (
	"context"
	"fmt"

	"github.com/auditflow/auditflow/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository wires a repository backed by pgxpool.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

// CreateBatch inserts drafts in their given order within one transaction,
// so an upload is either fully persisted or not at all.
func (r *ticketRepository) CreateBatch(ctx context.Context, uploadID uuid.UUID, drafts []domain.TicketDraft) ([]domain.Ticket, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("ticket repository not initialized")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tickets := make([]domain.Ticket, 0, len(drafts))
	for _, draft := range drafts {
		ticket := domain.Ticket{
			UploadID:    uploadID,
			TicketDraft: draft,
		}

		err := tx.QueryRow(
			ctx,
			`INSERT INTO tickets (
				upload_id, title, description, department, priority, status,
				due_date, recommendations, management_response, risk_level,
				finding_status, responsibility, followup, followup_response,
				management_updates
			 ) VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::date, $8, $9, $10, $11, $12, $13, $14, $15)
			 RETURNING id, ticket_number, created_at`,
			uploadID,
			draft.Title,
			draft.Description,
			draft.Department,
			draft.Priority,
			draft.Status,
			draft.DueDate,
			draft.Recommendations,
			draft.ManagementResponse,
			draft.RiskLevel,
			draft.FindingStatus,
			draft.Responsibility,
			draft.Followup,
			draft.FollowupResponse,
			draft.ManagementUpdates,
		).Scan(&ticket.ID, &ticket.TicketNumber, &ticket.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to insert ticket: %w", err)
		}

		tickets = append(tickets, ticket)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit tickets: %w", err)
	}

	return tickets, nil
}

func (r *ticketRepository) ListByUpload(ctx context.Context, uploadID uuid.UUID) ([]domain.Ticket, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("ticket repository not initialized")
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, ticket_number, upload_id, title, description, department,
		        priority, status, COALESCE(due_date::text, ''), recommendations,
		        management_response, risk_level, finding_status, responsibility,
		        followup, followup_response, management_updates, created_at
		 FROM tickets
		 WHERE upload_id = $1
		 ORDER BY ticket_number`,
		uploadID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		var t domain.Ticket
		err := rows.Scan(
			&t.ID,
			&t.TicketNumber,
			&t.UploadID,
			&t.Title,
			&t.Description,
			&t.Department,
			&t.Priority,
			&t.Status,
			&t.DueDate,
			&t.Recommendations,
			&t.ManagementResponse,
			&t.RiskLevel,
			&t.FindingStatus,
			&t.Responsibility,
			&t.Followup,
			&t.FollowupResponse,
			&t.ManagementUpdates,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tickets: %w", err)
	}

	return tickets, nil
}
