package models

import (
	"fmt"
	"math/rand/v2"
	"time"
)

type BookingStatus string

const (
	BookingPending        BookingStatus = "pending"
	BookingQuoteRequested BookingStatus = "quote_requested"
	BookingQuoteSent      BookingStatus = "quote_sent"
	BookingQuoteAccepted  BookingStatus = "quote_accepted"
	BookingAccepted       BookingStatus = "accepted"
	BookingDeclined       BookingStatus = "declined"
	BookingCompleted      BookingStatus = "completed"
	BookingPaid           BookingStatus = "paid"
	BookingCancelled      BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentUnpaid              PaymentStatus = "unpaid"
	PaymentProcessing          PaymentStatus = "processing"
	PaymentPaid                PaymentStatus = "paid"
	PaymentFailed              PaymentStatus = "failed"
	PaymentRefunded            PaymentStatus = "refunded"
	PaymentPendingVerification PaymentStatus = "pending_verification"
	PaymentDisputed            PaymentStatus = "disputed"
)

type PaymentMethod string

const (
	MethodStripe       PaymentMethod = "stripe"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCash         PaymentMethod = "cash"
	MethodRefund       PaymentMethod = "refund"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodStripe, MethodBankTransfer, MethodCash, MethodRefund:
		return true
	}
	return false
}

// bookingTransitions lists the legal generic status moves. MarkAsPaid is applied outside it.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:        {BookingQuoteRequested, BookingQuoteSent, BookingAccepted, BookingDeclined, BookingCancelled},
	BookingQuoteRequested: {BookingQuoteSent, BookingDeclined, BookingCancelled},
	BookingQuoteSent:      {BookingQuoteAccepted, BookingDeclined, BookingCancelled},
	BookingQuoteAccepted:  {BookingAccepted, BookingDeclined, BookingCancelled},
	BookingAccepted:       {BookingCompleted, BookingCancelled},
	BookingCompleted:      {BookingPaid},
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, candidate := range bookingTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingQuoteRequested, BookingQuoteSent, BookingQuoteAccepted, BookingAccepted,
		BookingDeclined, BookingCompleted, BookingPaid, BookingCancelled:
		return true
	}
	return false
}

// PaymentRecord is one entry in a booking's append-only payment history.
type PaymentRecord struct {
	Amount        float64       `bson:"amount,omitempty" json:"amount,omitempty"`
	Method        PaymentMethod `bson:"method,omitempty" json:"method,omitempty"`
	Status        string        `bson:"status,omitempty" json:"status,omitempty"`
	TransactionID string        `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	Notes         string        `bson:"notes,omitempty" json:"notes,omitempty"`
	Timestamp     time.Time     `bson:"timestamp" json:"timestamp"`
}

type Invoice struct {
	InvoiceNumber string    `bson:"invoiceNumber" json:"invoiceNumber"`
	Amount        float64   `bson:"amount" json:"amount"`
	Currency      string    `bson:"currency" json:"currency"`
	IssuedAt      time.Time `bson:"issuedAt" json:"issuedAt"`
}

// GenerateInvoiceNumber returns INV-YYYYMMDD-RRR. The three digit suffix is random, so two
// calls on the same day can collide.
func GenerateInvoiceNumber(now time.Time) string {
	return fmt.Sprintf("INV-%s-%03d", now.Format("20060102"), rand.IntN(1000))
}

func NewInvoice(amount float64, currency string, now time.Time) *Invoice {
	return &Invoice{
		InvoiceNumber: GenerateInvoiceNumber(now),
		Amount:        amount,
		Currency:      currency,
		IssuedAt:      now,
	}
}

type Quotation struct {
	Amount  float64   `bson:"amount" json:"amount"`
	Notes   string    `bson:"notes,omitempty" json:"notes,omitempty"`
	SentAt  time.Time `bson:"sentAt" json:"sentAt"`
	ValidTo time.Time `bson:"validTo,omitempty" json:"validTo,omitempty"`
}

// BookingDispute is the booking's embedded pointer to a dispute document.
type BookingDispute struct {
	DisputeID string    `bson:"disputeId" json:"disputeId"`
	Title     string    `bson:"title" json:"title"`
	OpenedBy  string    `bson:"openedBy" json:"openedBy"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

type Booking struct {
	ID              string           `bson:"id" json:"id"`
	ServiceSeeker   string           `bson:"serviceSeeker" json:"serviceSeeker" validate:"required"`
	ServiceProvider string           `bson:"serviceProvider" json:"serviceProvider" validate:"required,nefield=ServiceSeeker"`
	Date            string           `bson:"date" json:"date" validate:"required,datetime=2006-01-02"`
	Time            string           `bson:"time" json:"time" validate:"required,datetime=15:04"`
	Description     string           `bson:"description" json:"description" validate:"required,max=2000"`
	Address         string           `bson:"address,omitempty" json:"address,omitempty" validate:"max=300"`
	Price           float64          `bson:"price" json:"price" validate:"gt=0"`
	OriginalPrice   *float64         `bson:"originalPrice,omitempty" json:"originalPrice,omitempty"`
	Status          BookingStatus    `bson:"status" json:"status"`
	PaymentStatus   PaymentStatus    `bson:"paymentStatus" json:"paymentStatus"`
	PaymentMethod   PaymentMethod    `bson:"paymentMethod,omitempty" json:"paymentMethod,omitempty"`
	PaymentID       string           `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	PaymentDate     *time.Time       `bson:"paymentDate,omitempty" json:"paymentDate,omitempty"`
	Invoice         *Invoice         `bson:"invoice,omitempty" json:"invoice,omitempty"`
	Quotation       *Quotation       `bson:"quotation,omitempty" json:"quotation,omitempty"`
	PaymentHistory  []PaymentRecord  `bson:"paymentHistory" json:"paymentHistory"`
	Disputes        []BookingDispute `bson:"disputes" json:"disputes"`
	Rating          *int             `bson:"rating,omitempty" json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Review          string           `bson:"review,omitempty" json:"review,omitempty"`
	CancelReason    string           `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`
	CreatedAt       time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// IsParty reports whether userID is the seeker or provider on the booking.
func (b *Booking) IsParty(userID string) bool {
	return b.ServiceSeeker == userID || b.ServiceProvider == userID
}

// PaidUpdate is the set of fields MarkAsPaid writes in a single update.
type PaidUpdate struct {
	PaymentStatus PaymentStatus
	Status        BookingStatus
	PaymentDate   time.Time
	PaymentMethod PaymentMethod
	PaymentID     string
	Invoice       *Invoice
}

// NewPaidUpdate builds the update for a settled booking. invoice may be nil when the booking
// already carries one. The invoice amount is taken from the booking's price at write time.
func NewPaidUpdate(method PaymentMethod, transactionID string, invoice *Invoice, now time.Time) PaidUpdate {
	return PaidUpdate{
		PaymentStatus: PaymentPaid,
		Status:        BookingPaid,
		PaymentDate:   now,
		PaymentMethod: method,
		PaymentID:     transactionID,
		Invoice:       invoice,
	}
}

// MarkAsPaid applies a PaidUpdate to b.
func (b *Booking) MarkAsPaid(u PaidUpdate) {
	paidAt := u.PaymentDate
	b.PaymentStatus = u.PaymentStatus
	b.PaymentDate = &paidAt
	b.PaymentMethod = u.PaymentMethod
	b.PaymentID = u.PaymentID
	b.Status = u.Status
	if u.Invoice != nil && b.Invoice == nil {
		inv := *u.Invoice
		inv.Amount = b.Price
		b.Invoice = &inv
	}
	b.UpdatedAt = u.PaymentDate
}

// AddPaymentRecord appends to the payment history.
func (b *Booking) AddPaymentRecord(rec PaymentRecord) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	b.PaymentHistory = append(b.PaymentHistory, rec)
}

// CanBeReviewed reports whether the service on b has been delivered.
func (b *Booking) CanBeReviewed() bool {
	return b.Status == BookingCompleted || b.Status == BookingPaid
}

// NewBookingRequest is the payload a seeker submits.
type NewBookingRequest struct {
	ServiceProvider string  `json:"serviceProvider" binding:"required"`
	Date            string  `json:"date" binding:"required"`
	Time            string  `json:"time" binding:"required"`
	Description     string  `json:"description" binding:"required"`
	Address         string  `json:"address"`
	Price           float64 `json:"price"`
	RequestQuote    bool    `json:"requestQuote"`
}

// BookingFilter narrows booking listings.
type BookingFilter struct {
	Party         string
	Seeker        string
	Provider      string
	Status        BookingStatus
	PaymentStatus PaymentStatus
	Limit         int64
	Skip          int64
}
