package payment

import (
	"context"

	bookingRepo "fixerhub/database/repository/booking"
	paymentRepo "fixerhub/database/repository/payment"
	userRepo "fixerhub/database/repository/user"
	"fixerhub/models"
	"fixerhub/services/booking"
	"fixerhub/services/events"
	"fixerhub/services/notification"
)

type PaymentService interface {
	// CreateStripeIntent opens a card payment for a booking and returns the client secret.
	CreateStripeIntent(ctx context.Context, actor models.Actor, bookingID string) (*models.Payment, error)
	// HandleStripeWebhook verifies and applies a Stripe event.
	HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error
	SubmitBankTransfer(ctx context.Context, actor models.Actor, bookingID string, sub models.BankTransferSubmission) (*models.Payment, error)
	ConfirmBankTransfer(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error)
	RejectBankTransfer(ctx context.Context, actor models.Actor, bookingID, reason string) (*models.Payment, error)
	ConfirmCash(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error)
	Refund(ctx context.Context, actor models.Actor, bookingID string, req models.RefundRequest) (*models.Payment, error)
	ListForBooking(ctx context.Context, actor models.Actor, bookingID string) ([]models.Payment, error)
}

// IntentResult is what the gateway returns for a new card payment.
type IntentResult struct {
	ID           string
	ClientSecret string
}

// WebhookEvent is the subset of a gateway event the service acts on.
type WebhookEvent struct {
	Type          string
	IntentID      string
	FailureReason string
}

// Gateway is the card processor.
type Gateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (IntentResult, error)
	GetIntent(ctx context.Context, intentID string) (IntentResult, error)
	CancelIntent(ctx context.Context, intentID string) error
	Refund(ctx context.Context, intentID string, amountMinor int64, reason string) (string, error)
	ParseWebhook(payload []byte, signature string) (WebhookEvent, error)
}

type DefaultPaymentService struct {
	Repo     paymentRepo.PaymentRepository
	Bookings bookingRepo.BookingRepository
	Booking  booking.BookingService
	Users    userRepo.UserRepository
	Gateway  Gateway
	Notifier notification.Notifier
	Events   events.Publisher
	Currency models.Currency
}
