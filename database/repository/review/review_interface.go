package reviewRepo

import (
	"context"

	"fixerhub/models"
)

type ReviewRepository interface {
	// Create inserts a review. A second review for the same booking is a conflict.
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id string) (*models.Review, error)
	GetByBooking(ctx context.Context, bookingID string) (*models.Review, error)
	ListByProvider(ctx context.Context, providerID string, limit, skip int64) ([]models.Review, error)
	// SetProviderResponse records the provider's reply once.
	SetProviderResponse(ctx context.Context, id string, response models.ProviderResponse) (*models.Review, error)
	RatingSummary(ctx context.Context, providerID string) (models.RatingSummary, error)
}
