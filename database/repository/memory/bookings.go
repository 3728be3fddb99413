package memory

import (
	"context"
	"sort"
	"time"

	"fixerhub/apperrors"
	bookingRepo "fixerhub/database/repository/booking"
	"fixerhub/models"
)

type BookingRepo struct{ s *Store }

func (r *BookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.bookings[booking.ID]; ok {
		return apperrors.Conflict("booking already exists")
	}
	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	if booking.PaymentHistory == nil {
		booking.PaymentHistory = []models.PaymentRecord{}
	}
	if booking.Disputes == nil {
		booking.Disputes = []models.BookingDispute{}
	}
	b := *booking
	r.s.bookings[b.ID] = &b
	return nil
}

func (r *BookingRepo) get(id string) (*models.Booking, error) {
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, apperrors.NotFound("booking", id)
	}
	return b, nil
}

func cloneBooking(b *models.Booking) *models.Booking {
	out := *b
	out.PaymentHistory = append([]models.PaymentRecord(nil), b.PaymentHistory...)
	out.Disputes = append([]models.BookingDispute(nil), b.Disputes...)
	return &out
}

func (r *BookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return cloneBooking(b), nil
}

func (r *BookingRepo) List(ctx context.Context, f models.BookingFilter) ([]models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	bookings := []models.Booking{}
	for _, b := range r.s.bookings {
		if f.Party != "" && !b.IsParty(f.Party) {
			continue
		}
		if f.Seeker != "" && b.ServiceSeeker != f.Seeker {
			continue
		}
		if f.Provider != "" && b.ServiceProvider != f.Provider {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.PaymentStatus != "" && b.PaymentStatus != f.PaymentStatus {
			continue
		}
		bookings = append(bookings, *cloneBooking(b))
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].CreatedAt.After(bookings[j].CreatedAt) })
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return page(bookings, limit, f.Skip), nil
}

func (r *BookingRepo) TransitionStatus(ctx context.Context, id string, change bookingRepo.StatusChange) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, err := r.get(id)
	if err != nil {
		return nil, err
	}
	if b.Status != change.From {
		return nil, apperrors.Conflict("booking is no longer %s", change.From)
	}
	b.Status = change.To
	if change.Quotation != nil {
		q := *change.Quotation
		b.Quotation = &q
	}
	if change.CancelReason != "" {
		b.CancelReason = change.CancelReason
	}
	if change.PaymentStatus != "" {
		b.PaymentStatus = change.PaymentStatus
	}
	if change.Price != nil {
		if b.OriginalPrice == nil {
			original := b.Price
			b.OriginalPrice = &original
		}
		b.Price = *change.Price
	}
	b.UpdatedAt = time.Now()
	return cloneBooking(b), nil
}

func (r *BookingRepo) AddPaymentRecord(ctx context.Context, id string, rec models.PaymentRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, err := r.get(id)
	if err != nil {
		return err
	}
	b.AddPaymentRecord(rec)
	b.UpdatedAt = time.Now()
	return nil
}

func (r *BookingRepo) MarkAsPaid(ctx context.Context, id string, update models.PaidUpdate) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, err := r.get(id)
	if err != nil {
		return nil, err
	}
	switch b.Status {
	case models.BookingPaid, models.BookingDeclined, models.BookingCancelled:
		return nil, apperrors.Conflict("booking cannot be paid in its current status")
	}
	b.MarkAsPaid(update)
	return cloneBooking(b), nil
}

func (r *BookingRepo) SetPaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, err := r.get(id)
	if err != nil {
		return err
	}
	b.PaymentStatus = status
	b.UpdatedAt = time.Now()
	return nil
}

func (r *BookingRepo) AddDispute(ctx context.Context, id string, ref models.BookingDispute) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, err := r.get(id)
	if err != nil {
		return err
	}
	b.Disputes = append(b.Disputes, ref)
	if b.PaymentStatus == models.PaymentPaid {
		b.PaymentStatus = models.PaymentDisputed
	}
	b.UpdatedAt = time.Now()
	return nil
}

func (r *BookingRepo) SetRating(ctx context.Context, id string, rating int, review string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, err := r.get(id)
	if err != nil {
		return err
	}
	b.Rating = &rating
	b.Review = review
	b.UpdatedAt = time.Now()
	return nil
}

func (r *BookingRepo) CountByStatus(ctx context.Context) (map[models.BookingStatus]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	counts := map[models.BookingStatus]int64{}
	for _, b := range r.s.bookings {
		counts[b.Status]++
	}
	return counts, nil
}
