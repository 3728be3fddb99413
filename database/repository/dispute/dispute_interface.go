package disputeRepo

import (
	"context"

	"fixerhub/models"
)

// DisputeRepository stores disputes. Log appends and resolution are single-document writes.
type DisputeRepository interface {
	Create(ctx context.Context, dispute *models.Dispute) error
	GetByID(ctx context.Context, id string) (*models.Dispute, error)
	List(ctx context.Context, filter models.DisputeFilter) ([]models.Dispute, error)
	AddAdminNote(ctx context.Context, id string, note models.AdminNote) (*models.Dispute, error)
	AddMessage(ctx context.Context, id string, msg models.DisputeMessage) (*models.Dispute, error)
	AddEvidence(ctx context.Context, id string, evidence models.Evidence) (*models.Dispute, error)
	// Assign sets the handling admin and moves an open dispute under review.
	Assign(ctx context.Context, id, adminID string) (*models.Dispute, error)
	// UpdateStatus changes status unless the dispute is already terminal. Closing is allowed
	// from any status but closed.
	UpdateStatus(ctx context.Context, id string, status models.DisputeStatus) (*models.Dispute, error)
	// Resolve writes every resolution field at once. Resolving a terminal dispute is a conflict.
	Resolve(ctx context.Context, id string, resolution models.Resolution) (*models.Dispute, error)
	CountByStatus(ctx context.Context) (map[models.DisputeStatus]int64, error)
}
