package certificationRepo

import (
	"context"

	"fixerhub/models"
)

// CertificationRepository stores certifications. Writes that also change the owner's counters
// run in one transaction with the user update.
type CertificationRepository interface {
	// Create inserts a pending certification and counts it against the owner's total.
	Create(ctx context.Context, cert *models.Certification) error
	GetByID(ctx context.Context, id string) (*models.Certification, error)
	ListByProvider(ctx context.Context, providerID string, status models.CertificationStatus) ([]models.Certification, error)
	ListByStatus(ctx context.Context, status models.CertificationStatus, limit, skip int64) ([]models.Certification, error)
	// Review records an admin decision and adjusts the owner's points. It returns the updated
	// certification and owner.
	Review(ctx context.Context, id string, review models.CertificationReview) (*models.Certification, *models.User, error)
	// Delete removes the certification, withdrawing its points if it was approved.
	Delete(ctx context.Context, id string) (*models.Certification, error)
	// ProviderScores recomputes every provider's counters from stored certifications.
	ProviderScores(ctx context.Context) ([]models.ProviderScore, error)
	// ProviderScore recomputes one provider's counters. A provider without certifications gets
	// a zero score.
	ProviderScore(ctx context.Context, providerID string) (models.ProviderScore, error)
	CountByStatus(ctx context.Context) (map[models.CertificationStatus]int64, error)
}
