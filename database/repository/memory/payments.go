package memory

import (
	"context"
	"sort"
	"time"

	"fixerhub/apperrors"
	paymentRepo "fixerhub/database/repository/payment"
	"fixerhub/models"
)

type PaymentRepo struct{ s *Store }

func (r *PaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.payments[payment.ID]; ok {
		return apperrors.Conflict("payment already exists")
	}
	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	p := *payment
	p.ClientSecret = ""
	r.s.payments[p.ID] = &p
	return nil
}

// latest returns the newest payment matching keep.
func (r *PaymentRepo) latest(key string, keep func(p *models.Payment) bool) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var found *models.Payment
	for _, p := range r.s.payments {
		if keep(p) && (found == nil || p.CreatedAt.After(found.CreatedAt)) {
			found = p
		}
	}
	if found == nil {
		return nil, apperrors.NotFound("payment", key)
	}
	out := *found
	return &out, nil
}

func (r *PaymentRepo) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	return r.latest(id, func(p *models.Payment) bool { return p.ID == id })
}

func (r *PaymentRepo) GetByStripeIntent(ctx context.Context, intentID string) (*models.Payment, error) {
	return r.latest(intentID, func(p *models.Payment) bool { return p.StripePaymentIntentID == intentID })
}

func (r *PaymentRepo) FindOpenByBooking(ctx context.Context, bookingID string) (*models.Payment, error) {
	return r.latest(bookingID, func(p *models.Payment) bool { return p.Booking == bookingID && p.Status.IsOpen() })
}

func (r *PaymentRepo) FindConfirmedByBooking(ctx context.Context, bookingID string) (*models.Payment, error) {
	return r.latest(bookingID, func(p *models.Payment) bool {
		return p.Booking == bookingID && p.Status == models.PaymentStateConfirmed
	})
}

func (r *PaymentRepo) ListByBooking(ctx context.Context, bookingID string) ([]models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	payments := []models.Payment{}
	for _, p := range r.s.payments {
		if p.Booking == bookingID {
			payments = append(payments, *p)
		}
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].CreatedAt.Before(payments[j].CreatedAt) })
	return payments, nil
}

func (r *PaymentRepo) Transition(ctx context.Context, id string, to models.PaymentState, change paymentRepo.PaymentChange) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.payments[id]
	if !ok {
		return nil, apperrors.NotFound("payment", id)
	}
	if !p.Status.CanTransitionTo(to) {
		return nil, apperrors.Conflict("payment cannot move to %s", to)
	}

	now := time.Now()
	p.Status = to
	p.UpdatedAt = now
	if to == models.PaymentStateConfirmed {
		p.ConfirmedAt = &now
	}
	if change.StripePaymentIntentID != "" {
		p.StripePaymentIntentID = change.StripePaymentIntentID
	}
	if change.BankReference != "" {
		p.BankReference = change.BankReference
	}
	if change.ReceiptURL != "" {
		p.ReceiptURL = change.ReceiptURL
	}
	if change.FailureReason != "" {
		p.FailureReason = change.FailureReason
	}
	if change.Invoice != nil {
		p.Invoice = change.Invoice
	}
	if change.Refund != nil {
		p.RefundDetails = change.Refund
	}
	out := *p
	return &out, nil
}
