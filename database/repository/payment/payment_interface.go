package paymentRepo

import (
	"context"

	"fixerhub/models"
)

// PaymentChange carries the fields written alongside a payment state transition.
type PaymentChange struct {
	StripePaymentIntentID string
	BankReference         string
	ReceiptURL            string
	FailureReason         string
	Invoice               *models.Invoice
	Refund                *models.RefundDetails
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	GetByStripeIntent(ctx context.Context, intentID string) (*models.Payment, error)
	// FindOpenByBooking returns the open payment for a booking, or a NotFound error.
	FindOpenByBooking(ctx context.Context, bookingID string) (*models.Payment, error)
	// FindConfirmedByBooking returns the settled payment for a booking, or a NotFound error.
	FindConfirmedByBooking(ctx context.Context, bookingID string) (*models.Payment, error)
	ListByBooking(ctx context.Context, bookingID string) ([]models.Payment, error)
	// Transition moves the payment to `to` only if its current state may legally precede it.
	Transition(ctx context.Context, id string, to models.PaymentState, change PaymentChange) (*models.Payment, error)
}
