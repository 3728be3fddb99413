package booking

import (
	"context"
	"time"

	"fixerhub/apperrors"
	"fixerhub/models"
	"fixerhub/services/events"
	"fixerhub/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultBookingService) Create(ctx context.Context, seekerID string, req models.NewBookingRequest) (*models.Booking, error) {
	provider, err := s.Users.GetByID(ctx, req.ServiceProvider)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("provider", req.ServiceProvider)
		}
		return nil, err
	}
	if !provider.IsProvider() {
		return nil, apperrors.Validation("user %s is not a service provider", req.ServiceProvider)
	}

	price := req.Price
	status := models.BookingPending
	if req.RequestQuote {
		status = models.BookingQuoteRequested
		if price <= 0 {
			price = provider.HourlyRate
		}
	}

	b := &models.Booking{
		ID:              uuid.NewString(),
		ServiceSeeker:   seekerID,
		ServiceProvider: provider.ID,
		Date:            req.Date,
		Time:            req.Time,
		Description:     req.Description,
		Address:         req.Address,
		Price:           price,
		Status:          status,
		PaymentStatus:   models.PaymentUnpaid,
	}
	if err := models.Validate(b); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, b); err != nil {
		utils.GetLogger().Error("Create booking failed", zap.String("seeker", seekerID), zap.Error(err))
		return nil, err
	}

	s.notify(ctx, provider.ID, "New booking request", "You have a new booking request for "+b.Date+" at "+b.Time, b)
	s.Events.Publish(ctx, events.SubjectBookingStatus, b.ID, map[string]any{"status": b.Status})
	return b, nil
}

func (s *DefaultBookingService) Get(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !b.IsParty(actor.ID) {
		return nil, apperrors.Forbidden("you are not a party to this booking")
	}
	return b, nil
}

func (s *DefaultBookingService) List(ctx context.Context, actor models.Actor, filter models.BookingFilter) ([]models.Booking, error) {
	if !actor.IsAdmin() {
		filter.Seeker, filter.Provider = "", ""
		switch actor.Role {
		case models.RoleProvider:
			filter.Provider = actor.ID
		default:
			filter.Seeker = actor.ID
		}
	}
	return s.Repo.List(ctx, filter)
}

func (s *DefaultBookingService) AddPaymentRecord(ctx context.Context, id string, rec models.PaymentRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	if rec.Method != "" && !rec.Method.Valid() {
		return apperrors.Validation("unknown payment method %q", rec.Method)
	}
	return s.Repo.AddPaymentRecord(ctx, id, rec)
}

func (s *DefaultBookingService) MarkAsPaid(ctx context.Context, id string, method models.PaymentMethod, transactionID string) (*models.Booking, error) {
	if !method.Valid() {
		return nil, apperrors.Validation("unknown payment method %q", method)
	}
	now := time.Now()
	// The stored price at write time becomes the invoice amount.
	invoice := models.NewInvoice(0, s.currency(), now)

	b, err := s.Repo.MarkAsPaid(ctx, id, models.NewPaidUpdate(method, transactionID, invoice, now))
	if err != nil {
		return nil, err
	}

	s.Events.Publish(ctx, events.SubjectBookingPaid, b.ID, map[string]any{
		"method":        b.PaymentMethod,
		"transactionId": b.PaymentID,
		"invoice":       b.Invoice,
	})
	s.notify(ctx, b.ServiceProvider, "Payment received", "Booking on "+b.Date+" has been paid", b)
	return b, nil
}

func (s *DefaultBookingService) currency() string {
	if s.Currency == "" {
		return string(models.CurrencyLKR)
	}
	return s.Currency
}

func (s *DefaultBookingService) notify(ctx context.Context, userID, title, body string, b *models.Booking) {
	s.Notifier.Push(ctx, models.PushPayload{
		UserID: userID,
		Title:  title,
		Body:   body,
		Data:   map[string]string{"type": "booking", "bookingId": b.ID, "status": string(b.Status)},
	})
}
