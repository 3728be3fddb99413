package models

import "time"

type Currency string

const (
	CurrencyLKR Currency = "LKR"
	CurrencyUSD Currency = "USD"
)

func (c Currency) Valid() bool {
	return c == CurrencyLKR || c == CurrencyUSD
}

// PaymentState is the lifecycle of a standalone Payment record.
type PaymentState string

const (
	PaymentStateCreated                     PaymentState = "created"
	PaymentStatePendingCustomerAction       PaymentState = "pending_customer_action"
	PaymentStatePendingProviderConfirmation PaymentState = "pending_provider_confirmation"
	PaymentStateConfirmed                   PaymentState = "confirmed"
	PaymentStateFailed                      PaymentState = "failed"
	PaymentStateCancelled                   PaymentState = "cancelled"
	PaymentStateRefunded                    PaymentState = "refunded"
)

// IsOpen reports whether the payment still awaits an outcome.
func (s PaymentState) IsOpen() bool {
	switch s {
	case PaymentStateCreated, PaymentStatePendingCustomerAction, PaymentStatePendingProviderConfirmation:
		return true
	}
	return false
}

type RefundDetails struct {
	Amount     float64   `bson:"amount" json:"amount"`
	Reason     string    `bson:"reason,omitempty" json:"reason,omitempty"`
	RefundID   string    `bson:"refundId,omitempty" json:"refundId,omitempty"`
	RefundedBy string    `bson:"refundedBy,omitempty" json:"refundedBy,omitempty"`
	RefundedAt time.Time `bson:"refundedAt" json:"refundedAt"`
}

// Payment is the canonical record of one payment attempt for a booking. Booking keeps its own
// inline payment fields as well; both are written on settlement.
type Payment struct {
	ID                    string         `bson:"id" json:"id"`
	Booking               string         `bson:"booking" json:"booking" validate:"required"`
	Payer                 string         `bson:"payer" json:"payer" validate:"required"`
	Payee                 string         `bson:"payee" json:"payee" validate:"required"`
	Amount                float64        `bson:"amount" json:"amount" validate:"gt=0"`
	Currency              Currency       `bson:"currency" json:"currency" validate:"required,oneof=LKR USD"`
	PaymentMethod         PaymentMethod  `bson:"paymentMethod" json:"paymentMethod" validate:"required,oneof=stripe bank_transfer cash refund"`
	Status                PaymentState   `bson:"status" json:"status"`
	StripePaymentIntentID string         `bson:"stripePaymentIntentId,omitempty" json:"stripePaymentIntentId,omitempty"`
	ClientSecret          string         `bson:"-" json:"clientSecret,omitempty"`
	BankReference         string         `bson:"bankReference,omitempty" json:"bankReference,omitempty"`
	ReceiptURL            string         `bson:"receiptUrl,omitempty" json:"receiptUrl,omitempty"`
	Invoice               *Invoice       `bson:"invoice,omitempty" json:"invoice,omitempty"`
	RefundDetails         *RefundDetails `bson:"refundDetails,omitempty" json:"refundDetails,omitempty"`
	FailureReason         string         `bson:"failureReason,omitempty" json:"failureReason,omitempty"`
	ConfirmedAt           *time.Time     `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	CreatedAt             time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// BankTransferSubmission is sent by a seeker after wiring money to the provider.
type BankTransferSubmission struct {
	Reference  string `json:"reference" binding:"required"`
	ReceiptURL string `json:"receiptUrl"`
}

type RefundRequest struct {
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

// Failed and cancelled payments can still be refunded when a card capture lands late.
var paymentTransitions = map[PaymentState][]PaymentState{
	PaymentStateCreated:                     {PaymentStatePendingCustomerAction, PaymentStatePendingProviderConfirmation, PaymentStateConfirmed, PaymentStateFailed, PaymentStateCancelled},
	PaymentStatePendingCustomerAction:       {PaymentStateConfirmed, PaymentStateFailed, PaymentStateCancelled},
	PaymentStatePendingProviderConfirmation: {PaymentStateConfirmed, PaymentStateFailed, PaymentStateCancelled},
	PaymentStateConfirmed:                   {PaymentStateRefunded},
	PaymentStateFailed:                      {PaymentStateRefunded},
	PaymentStateCancelled:                   {PaymentStateRefunded},
}

func (s PaymentState) CanTransitionTo(next PaymentState) bool {
	for _, candidate := range paymentTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// PaymentSources lists every state from which to is reachable in one step.
func PaymentSources(to PaymentState) []PaymentState {
	var sources []PaymentState
	for from, nexts := range paymentTransitions {
		for _, next := range nexts {
			if next == to {
				sources = append(sources, from)
			}
		}
	}
	return sources
}
