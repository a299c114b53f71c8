package repository

import (
	"context"

	"github.com/auditflow/auditflow/internal/domain"

	"github.com/google/uuid"
)

// TicketRepository is the persistence collaborator for the ingestion
// pipeline. It assigns identifiers and sequential ticket numbers; the
// pipeline only hands over validated drafts in row order.
type TicketRepository interface {
	CreateBatch(ctx context.Context, uploadID uuid.UUID, drafts []domain.TicketDraft) ([]domain.Ticket, error)
	ListByUpload(ctx context.Context, uploadID uuid.UUID) ([]domain.Ticket, error)
}
