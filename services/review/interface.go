package review

import (
	"context"

	bookingRepo "fixerhub/database/repository/booking"
	reviewRepo "fixerhub/database/repository/review"
	userRepo "fixerhub/database/repository/user"
	"fixerhub/models"
	"fixerhub/services/events"
	"fixerhub/services/notification"
)

type ReviewService interface {
	// Create records the seeker's review of a delivered booking. One review per booking.
	Create(ctx context.Context, seekerID string, req models.NewReviewRequest) (*models.Review, error)
	Respond(ctx context.Context, providerID, reviewID, comment string) (*models.Review, error)
	ListByProvider(ctx context.Context, providerID string, limit, skip int64) ([]models.Review, error)
}

type DefaultReviewService struct {
	Repo     reviewRepo.ReviewRepository
	Bookings bookingRepo.BookingRepository
	Users    userRepo.UserRepository
	Notifier notification.Notifier
	Events   events.Publisher
}
