package certification

import (
	"context"
	"io"

	certificationRepo "fixerhub/database/repository/certification"
	userRepo "fixerhub/database/repository/user"
	"fixerhub/models"
	"fixerhub/services/events"
	"fixerhub/services/notification"
	"fixerhub/services/storage"
)

// CertificationService manages provider certifications and the points they award.
type CertificationService interface {
	Upload(ctx context.Context, providerID string, form models.CertificationUpload, document io.Reader) (*models.Certification, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.Certification, error)
	ListMine(ctx context.Context, providerID string, status models.CertificationStatus) ([]models.Certification, error)
	// ListActive returns the approved, unexpired certifications shown on a provider's profile.
	ListActive(ctx context.Context, providerID string) ([]models.Certification, error)
	ListPending(ctx context.Context, limit, skip int64) ([]models.Certification, error)
	Approve(ctx context.Context, adminID, id string) (*models.Certification, error)
	Reject(ctx context.Context, adminID, id, reason string) (*models.Certification, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
	// Reconcile recomputes every provider's counters from stored certifications and returns the
	// number of providers whose counters changed.
	Reconcile(ctx context.Context) (int, error)
}

type DefaultCertificationService struct {
	Repo     certificationRepo.CertificationRepository
	Users    userRepo.UserRepository
	Storage  storage.StorageService
	Notifier notification.Notifier
	Events   events.Publisher
}
