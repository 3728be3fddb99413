package bookingRepo

import (
	"context"

	"fixerhub/models"
)

// StatusChange moves a booking from one status to another. Optional fields are written in the
// same update.
type StatusChange struct {
	From          models.BookingStatus
	To            models.BookingStatus
	Price         *float64
	Quotation     *models.Quotation
	CancelReason  string
	PaymentStatus models.PaymentStatus
}

// BookingRepository defines methods for booking data access.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	// TransitionStatus applies change only if the booking is still in change.From.
	TransitionStatus(ctx context.Context, id string, change StatusChange) (*models.Booking, error)
	// AddPaymentRecord appends rec to the payment history.
	AddPaymentRecord(ctx context.Context, id string, rec models.PaymentRecord) error
	// MarkAsPaid writes every settlement field in one update.
	MarkAsPaid(ctx context.Context, id string, update models.PaidUpdate) (*models.Booking, error)
	SetPaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error
	// AddDispute links a dispute and flags a paid booking as disputed.
	AddDispute(ctx context.Context, id string, ref models.BookingDispute) error
	SetRating(ctx context.Context, id string, rating int, review string) error
	CountByStatus(ctx context.Context) (map[models.BookingStatus]int64, error)
}
