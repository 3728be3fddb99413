package dispute

import (
	"context"
	"io"

	bookingRepo "fixerhub/database/repository/booking"
	disputeRepo "fixerhub/database/repository/dispute"
	userRepo "fixerhub/database/repository/user"
	"fixerhub/models"
	"fixerhub/services/events"
	"fixerhub/services/notification"
	"fixerhub/services/storage"
)

// DisputeService runs the dispute workflow: open, under_review, resolved, closed. Notes and
// messages are append-only.
type DisputeService interface {
	Create(ctx context.Context, actor models.Actor, req models.NewDisputeRequest) (*models.Dispute, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.Dispute, error)
	List(ctx context.Context, actor models.Actor, filter models.DisputeFilter) ([]models.Dispute, error)
	AddMessage(ctx context.Context, actor models.Actor, id, message string) (*models.Dispute, error)
	AddEvidence(ctx context.Context, actor models.Actor, id string, file io.Reader) (*models.Dispute, error)
	AddAdminNote(ctx context.Context, adminID, id, note string) (*models.Dispute, error)
	Assign(ctx context.Context, id, adminID string) (*models.Dispute, error)
	UpdateStatus(ctx context.Context, id string, status models.DisputeStatus) (*models.Dispute, error)
	// Resolve closes the workflow with a resolution. A refund outcome refunds the booking's
	// settled payment first.
	Resolve(ctx context.Context, adminID, id string, req models.ResolveDisputeRequest) (*models.Dispute, error)
}

// Refunder issues refunds for a booking. It is satisfied by the payment service.
type Refunder interface {
	Refund(ctx context.Context, actor models.Actor, bookingID string, req models.RefundRequest) (*models.Payment, error)
}

type DefaultDisputeService struct {
	Repo     disputeRepo.DisputeRepository
	Bookings bookingRepo.BookingRepository
	Users    userRepo.UserRepository
	Refunds  Refunder
	Storage  storage.StorageService
	Notifier notification.Notifier
	Events   events.Publisher
}
