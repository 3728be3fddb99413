package booking

import (
	"context"

	bookingRepo "fixerhub/database/repository/booking"
	userRepo "fixerhub/database/repository/user"
	"fixerhub/models"
	"fixerhub/services/events"
	"fixerhub/services/notification"
)

// BookingService runs the booking workflow. Status changes follow the transition table in
// models and are applied with a compare-and-set on the previous status.
type BookingService interface {
	Create(ctx context.Context, seekerID string, req models.NewBookingRequest) (*models.Booking, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.Booking, error)
	List(ctx context.Context, actor models.Actor, filter models.BookingFilter) ([]models.Booking, error)

	RequestQuote(ctx context.Context, actor models.Actor, id string) (*models.Booking, error)
	SendQuote(ctx context.Context, actor models.Actor, id string, quote QuoteRequest) (*models.Booking, error)
	AcceptQuote(ctx context.Context, actor models.Actor, id string) (*models.Booking, error)
	DeclineQuote(ctx context.Context, actor models.Actor, id string) (*models.Booking, error)
	Accept(ctx context.Context, actor models.Actor, id string) (*models.Booking, error)
	Decline(ctx context.Context, actor models.Actor, id string) (*models.Booking, error)
	Complete(ctx context.Context, actor models.Actor, id string) (*models.Booking, error)
	Cancel(ctx context.Context, actor models.Actor, id, reason string) (*models.Booking, error)

	// AddPaymentRecord appends to the booking's payment history.
	AddPaymentRecord(ctx context.Context, id string, rec models.PaymentRecord) error
	// MarkAsPaid settles the booking in one write and issues an invoice if none exists.
	MarkAsPaid(ctx context.Context, id string, method models.PaymentMethod, transactionID string) (*models.Booking, error)
}

// QuoteRequest is sent by a provider answering a quote request.
type QuoteRequest struct {
	Amount       float64 `json:"amount" binding:"required,gt=0"`
	Notes        string  `json:"notes"`
	ValidForDays int     `json:"validForDays"`
}

type DefaultBookingService struct {
	Repo     bookingRepo.BookingRepository
	Users    userRepo.UserRepository
	Notifier notification.Notifier
	Events   events.Publisher
	Currency string
}
